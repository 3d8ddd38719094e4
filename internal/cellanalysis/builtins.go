package cellanalysis

// builtins is the fixed universe of names that never become refs (spec.md
// §4.3). Re-architected from the source's global mutable builtins table
// (spec.md §9) into a package-level constant map populated once at init.
var builtins = buildBuiltins()

func buildBuiltins() map[string]bool {
	names := []string{
		"abs", "aiter", "anext", "all", "any", "ascii", "bin", "bool",
		"breakpoint", "bytearray", "bytes", "callable", "chr", "classmethod",
		"compile", "complex", "delattr", "dict", "dir", "divmod", "enumerate",
		"eval", "exec", "filter", "float", "format", "frozenset", "getattr",
		"globals", "hasattr", "hash", "help", "hex", "id", "input", "int",
		"isinstance", "issubclass", "iter", "len", "list", "locals", "map",
		"max", "memoryview", "min", "next", "object", "oct", "open", "ord",
		"pow", "print", "property", "range", "repr", "reversed", "round",
		"set", "setattr", "slice", "sorted", "staticmethod", "str", "sum",
		"super", "tuple", "type", "vars", "zip", "__import__",
		// exceptions / constants
		"True", "False", "None", "NotImplemented", "Ellipsis", "__debug__",
		"BaseException", "Exception", "ArithmeticError", "AssertionError",
		"AttributeError", "BlockingIOError", "BrokenPipeError",
		"BufferError", "BytesWarning", "ChildProcessError",
		"ConnectionAbortedError", "ConnectionError", "ConnectionRefusedError",
		"ConnectionResetError", "DeprecationWarning", "EOFError",
		"EnvironmentError", "FileExistsError", "FileNotFoundError",
		"FloatingPointError", "FutureWarning", "GeneratorExit", "IOError",
		"ImportError", "ImportWarning", "IndentationError", "IndexError",
		"InterruptedError", "IsADirectoryError", "KeyError",
		"KeyboardInterrupt", "LookupError", "MemoryError",
		"ModuleNotFoundError", "NameError", "NotADirectoryError",
		"NotImplementedError", "OSError", "OverflowError",
		"PendingDeprecationWarning", "PermissionError", "ProcessLookupError",
		"RecursionError", "ReferenceError", "ResourceWarning", "RuntimeError",
		"RuntimeWarning", "StopAsyncIteration", "StopIteration",
		"SyntaxError", "SyntaxWarning", "SystemError", "SystemExit",
		"TabError", "TimeoutError", "TypeError", "UnboundLocalError",
		"UnicodeDecodeError", "UnicodeEncodeError", "UnicodeError",
		"UnicodeTranslateError", "UnicodeWarning", "UserWarning",
		"ValueError", "Warning", "ZeroDivisionError", "self", "cls",
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func isBuiltin(name string) bool {
	return builtins[name]
}

func isDunder(name string) bool {
	return len(name) > 4 && name[:2] == "__" && name[len(name)-2:] == "__"
}

// isCellLocal reports whether a name is the cell-local kind excluded from
// defs/refs visible to other cells (spec.md §3 invariant): any name
// prefixed with "_" unless it is also a recognized dunder name.
func isCellLocal(name string) bool {
	return len(name) > 0 && name[0] == '_' && !isDunder(name)
}
