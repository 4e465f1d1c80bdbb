package compiler_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nwillc/byteflow/compiler"
	"github.com/nwillc/byteflow/parse"
	"github.com/nwillc/byteflow/stdlib"
	"github.com/nwillc/byteflow/symtab"
	"github.com/nwillc/byteflow/tape"
	"github.com/stretchr/testify/require"
)

func compileAndRun(t *testing.T, src string) string {
	t.Helper()
	code, err := compiler.New(compiler.WithLibrary(stdlib.PrintNum, stdlib.PrintChar)).Compile(src)
	require.NoError(t, err)

	var out bytes.Buffer
	m := tape.New(nil, &out)
	require.NoError(t, m.Run(context.Background(), code))
	return out.String()
}

func Test_Compile_testdataFixtures(t *testing.T) {
	fixtures, err := filepath.Glob("../testdata/*.c")
	require.NoError(t, err)
	require.NotEmpty(t, fixtures)

	for _, path := range fixtures {
		path := path
		name := strings.TrimSuffix(filepath.Base(path), ".c")
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(path)
			require.NoError(t, err)
			want, err := os.ReadFile(strings.TrimSuffix(path, ".c") + ".golden")
			require.NoError(t, err)

			got := compileAndRun(t, string(src))
			require.Equal(t, string(want), got)
		})
	}
}

func Test_Compile_noMainFunction(t *testing.T) {
	_, err := compiler.New().Compile(`int f() { return 1; }`)
	require.Error(t, err)
	var semErr *symtab.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func Test_Compile_mainTakesNoParameters(t *testing.T) {
	_, err := compiler.New().Compile(`int main(int argc) { return 0; }`)
	require.Error(t, err)
}

func Test_Compile_recursionRejected(t *testing.T) {
	_, err := compiler.New().Compile(`
		int f() { return f(); }
		int main() { f(); }
	`)
	require.Error(t, err)
}

func Test_Compile_duplicateCaseValue(t *testing.T) {
	_, err := compiler.New().Compile(`
		int main() {
			int x = 1;
			switch (x) {
			case 1:
				break;
			case 1:
				break;
			}
		}
	`)
	require.Error(t, err)
	var semErr *symtab.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func Test_Compile_declarationDirectlyInCase(t *testing.T) {
	_, err := compiler.New().Compile(`
		int main() {
			int x = 1;
			switch (x) {
			case 1:
				int y = 0;
				break;
			}
		}
	`)
	require.Error(t, err)
	var semErr *symtab.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func Test_Compile_declarationInNestedBlockInCaseIsAllowed(t *testing.T) {
	out := compileAndRun(t, `
		int main() {
			int x = 1;
			switch (x) {
			case 1:
				{
					int y = 5;
					print_num(y);
				}
				break;
			}
		}
	`)
	require.Equal(t, "5", out)
}

func Test_Compile_arrayWrongIndexCount(t *testing.T) {
	_, err := compiler.New().Compile(`
		int main() {
			int a[2][3];
			a[1] = 5;
		}
	`)
	require.Error(t, err)
	var semErr *symtab.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func Test_Compile_arrayNestedLiteralInitializer(t *testing.T) {
	out := compileAndRun(t, `
		int main() {
			int a[2][2] = {{1, 2}, {3, 4}};
			print_num(a[0][0]);
			print_num(a[0][1]);
			print_num(a[1][0]);
			print_num(a[1][1]);
		}
	`)
	require.Equal(t, "1234", out)
}

func Test_Compile_arrayStringInitializer(t *testing.T) {
	out := compileAndRun(t, `
		int main() {
			int msg[6] = "Hi";
			print msg[0];
			print msg[1];
			print_num(msg[2]);
		}
	`)
	require.Equal(t, "Hi0", out)
}

func Test_Compile_arrayLiteralZeroPadsTail(t *testing.T) {
	out := compileAndRun(t, `
		int main() {
			int a[3] = {9};
			print_num(a[0]);
			print_num(a[1]);
			print_num(a[2]);
		}
	`)
	require.Equal(t, "900", out)
}

func Test_Compile_arrayLiteralOverLong(t *testing.T) {
	_, err := compiler.New().Compile(`
		int main() {
			int a[2] = {1, 2, 3};
		}
	`)
	require.Error(t, err)
	var semErr *symtab.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func Test_Compile_arrayNestedLiteralSubListOverLong(t *testing.T) {
	_, err := compiler.New().Compile(`
		int main() {
			int a[2][2] = {{1, 2, 3}, {4, 5}};
		}
	`)
	require.Error(t, err)
	var semErr *symtab.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func Test_Compile_arrayStringInitializerTooLong(t *testing.T) {
	_, err := compiler.New().Compile(`
		int main() {
			int msg[2] = "Hello";
		}
	`)
	require.Error(t, err)
	var semErr *symtab.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func Test_Compile_undefinedIdentifier(t *testing.T) {
	_, err := compiler.New().Compile(`int main() { return nope; }`)
	require.Error(t, err)
	var semErr *symtab.SemanticError
	require.ErrorAs(t, err, &semErr)
}

func Test_Compile_callWrongArgCount(t *testing.T) {
	_, err := compiler.New().Compile(`
		int add(int a, int b) { return a + b; }
		int main() { return add(1); }
	`)
	require.Error(t, err)
	var synErr *parse.SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func Test_Compile_libraryNameCollision(t *testing.T) {
	_, err := compiler.New(compiler.WithLibrary(stdlib.PrintNum)).Compile(`
		int print_num(int n) { return n; }
		int main() { return 0; }
	`)
	require.Error(t, err)
}

func Test_Compile_withoutOptimize(t *testing.T) {
	optimized, err := compiler.New(compiler.WithOptimize(true)).Compile(`int main() { print "x"; }`)
	require.NoError(t, err)
	unoptimized, err := compiler.New(compiler.WithOptimize(false)).Compile(`int main() { print "x"; }`)
	require.NoError(t, err)
	require.LessOrEqual(t, len(optimized), len(unoptimized))
}

func Test_Compile_withLogf(t *testing.T) {
	var lines []string
	_, err := compiler.New(compiler.WithLogf(func(format string, args ...interface{}) {
		lines = append(lines, format)
	})).Compile(`int main() { }`)
	require.NoError(t, err)
	require.NotEmpty(t, lines)
}

func Test_Compile_duplicateFunctionDefinition(t *testing.T) {
	_, err := compiler.New().Compile(`
		int f() { return 1; }
		int f() { return 2; }
		int main() { f(); }
	`)
	require.Error(t, err)
}

func Test_Compile_ifElseChain(t *testing.T) {
	out := compileAndRun(t, `
		int classify(int n) {
			if (n < 0) {
				return 0;
			} else if (n == 0) {
				return 1;
			} else {
				return 2;
			}
		}
		int main() {
			print_num(classify(-5));
			print_num(classify(0));
			print_num(classify(5));
		}
	`)
	require.Equal(t, "212", out)
}

func Test_Compile_doWhile(t *testing.T) {
	out := compileAndRun(t, `
		int main() {
			int i = 0;
			do {
				print_num(i);
				i++;
			} while (i < 3);
		}
	`)
	require.Equal(t, "012", out)
}

func Test_Compile_forWithoutDeclaration(t *testing.T) {
	out := compileAndRun(t, `
		int main() {
			int i;
			for (i = 0; i < 3; i++) {
				print_num(i);
			}
		}
	`)
	require.Equal(t, "012", out)
}

func Test_Compile_compoundAssign(t *testing.T) {
	out := compileAndRun(t, `
		int main() {
			int x = 10;
			x += 5;
			x -= 2;
			x *= 2;
			print_num(x);
		}
	`)
	require.Equal(t, "26", out)
}

func Test_Compile_globalVariables(t *testing.T) {
	out := compileAndRun(t, `
		int total = 100;
		int main() {
			print_num(total);
		}
	`)
	require.Equal(t, "100", out)
}

func Test_Compile_breakOutsideSwitch(t *testing.T) {
	_, err := compiler.New().Compile(`int main() { break; }`)
	require.Error(t, err)
}

func Test_Compile_returnNotLastStatement(t *testing.T) {
	_, err := compiler.New().Compile(`
		int f() {
			return 1;
			int x = 2;
		}
		int main() { f(); }
	`)
	require.Error(t, err)
}
