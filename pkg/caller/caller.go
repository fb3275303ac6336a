package caller

import (
	"runtime"
	"strings"
)

// Name returns the name of the function or method that called the function
// invoking Name. Methods are returned as "type.Method", plain functions as
// "Func". Closures resolve to their enclosing function.
//
//	func (m *Mapper) run() {
//		fmt.Println(caller.Name()) // Mapper.run
//	}
//
// The optional skip moves further up the stack:
//
//	func (e *Engine) runPhase() {
//		helper()
//	}
//
//	func helper() {
//		fmt.Println(caller.Name(1)) // Engine.runPhase
//	}
func Name(skip ...int) string {
	offset := 1
	if len(skip) > 0 {
		offset += skip[0]
	}

	pc, _, _, ok := runtime.Caller(offset)
	if !ok {
		return ""
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}

	return shorten(fn.Name())
}

// shorten turns "github.com/x/y/pkg.(*T).Method.func1" into "T.Method".
func shorten(fullName string) string {
	// drop the import path, dots inside it would confuse the split below
	if i := strings.LastIndex(fullName, "/"); i >= 0 {
		fullName = fullName[i+1:]
	}

	parts := strings.Split(fullName, ".")

	// anonymous functions: "func1", "func2", "1" (go1.21+ nested closures)
	for len(parts) > 1 && isClosure(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}

	switch len(parts) {
	case 0, 1:
		return ""
	case 2:
		return parts[1]
	default:
		typeName := strings.Trim(parts[len(parts)-2], "(*)")
		return typeName + "." + parts[len(parts)-1]
	}
}

func isClosure(part string) bool {
	if strings.HasPrefix(part, "func") {
		return true
	}

	for _, r := range part {
		if r < '0' || r > '9' {
			return false
		}
	}

	return part != ""
}
