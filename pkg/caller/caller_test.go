package caller

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testStruct struct{}

func (t *testStruct) Method() string {
	return Name()
}

func plainFunc() string {
	return Name()
}

func outer() string {
	return inner()
}

func inner() string {
	return Name(1)
}

func TestName(t *testing.T) {
	require.Equal(t, "testStruct.Method", (&testStruct{}).Method())
	require.Equal(t, "plainFunc", plainFunc())
	require.Equal(t, "outer", outer())

	closure := func() string { return Name() }
	require.Equal(t, "TestName", closure())
}

func TestShorten(t *testing.T) {
	cases := map[string]string{
		"github.com/tymbaca/sharedkeys/mapreduce.(*Mapper).run":       "Mapper.run",
		"github.com/tymbaca/sharedkeys/mapreduce.(*Mapper).run.func1": "Mapper.run",
		"github.com/tymbaca/sharedkeys/mapreduce.Partition":           "Partition",
		"github.com/tymbaca/sharedkeys/mapreduce.Partition.func2.1":   "Partition",
		"main.main": "main",
		"broken":    "",
	}

	for in, want := range cases {
		require.Equal(t, want, shorten(in), in)
	}
}
