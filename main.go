package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/alecthomas/repr"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/Maxkoz777/OJavaTranspiler/driver"
	"github.com/Maxkoz777/OJavaTranspiler/emitter"
	"github.com/Maxkoz777/OJavaTranspiler/lexer"
	"github.com/Maxkoz777/OJavaTranspiler/parser"
)

var compileFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:  "verbose",
		Usage: "log every pipeline stage",
	},
	&cli.BoolFlag{
		Name:  "no-stdlib",
		Usage: "do not register the bundled library units",
	},
}

func compileProject(c *cli.Context) (*driver.Result, project, error) {
	p, err := loadProject(ProjectFile)
	if err != nil {
		return nil, p, err
	}

	opts := driver.Options{
		Library: p.Library,
		Source:  p.Source,
		Stdlib:  p.useStdlib() && !c.Bool("no-stdlib"),
	}
	if c.Bool("verbose") {
		opts.Logger = log.New(os.Stderr, "", 0)
	}

	result, err := driver.Compile(opts)
	return result, p, err
}

func readUnit(file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("no file provided")
	}
	data, err := ioutil.ReadFile(file)
	if err != nil {
		return "", tracerr.Wrap(err)
	}
	return string(data), nil
}

func printDump(format string, v interface{}) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "repr", "":
		repr.Println(v)
	default:
		return fmt.Errorf("unknown format %s", format)
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "ojava",
		Usage: "O language compiler targeting Go",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "print errors with their stack trace and source",
			},
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			if c.Bool("trace") {
				tracerr.PrintSourceColor(err)
				os.Exit(1)
			}
			log.Fatal(tracerr.Unwrap(err))
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "init a project directory",
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return fmt.Errorf("no package name provided")
					}
					p := defaultProject(name)
					for _, dir := range []string{p.Source, p.Library} {
						if err := os.MkdirAll(dir, 0755); err != nil {
							return tracerr.Wrap(err)
						}
					}
					return writeProject(ProjectFile, p)
				},
			},
			{
				Name:  "check",
				Usage: "lex, parse and type check the project",
				Flags: compileFlags,
				Action: func(c *cli.Context) error {
					result, _, err := compileProject(c)
					if err != nil {
						return err
					}
					fmt.Printf("ok: %d units\n", len(result.Units))
					return nil
				},
			},
			{
				Name:  "build",
				Usage: "check the project and emit Go code",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "output",
						Usage: "output directory, overrides the project file",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Usage: "print the generated code instead of writing it",
					},
				}, compileFlags...),
				Action: func(c *cli.Context) error {
					result, p, err := compileProject(c)
					if err != nil {
						return err
					}

					config := emitter.Config{Package: p.Package, ImportPath: p.ImportPath}
					if c.Bool("dump") {
						files, err := emitter.NewEmitter(result.Session, config).Emit()
						if err != nil {
							return tracerr.Wrap(err)
						}
						for _, file := range files {
							fmt.Printf("// %s\n%s\n", file.Path, file.Content)
						}
						return nil
					}

					out := c.String("output")
					if out == "" {
						out = p.Output
					}
					var l *log.Logger
					if c.Bool("verbose") {
						l = log.New(os.Stderr, "", 0)
					}
					written, err := driver.Emit(result, out, config, l)
					if err != nil {
						return err
					}
					fmt.Printf("wrote %d files to %s\n", len(written), out)
					return nil
				},
			},
			{
				Name:      "dump",
				Usage:     "dump the tokens or the tree of one unit",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "tokens",
						Usage: "dump tokens instead of the tree",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "repr",
						Usage: "repr or json",
					},
				},
				Action: func(c *cli.Context) error {
					file := c.Args().First()
					src, err := readUnit(file)
					if err != nil {
						return err
					}

					tokens, err := lexer.Tokenize(src, file)
					if err != nil {
						return tracerr.Wrap(err)
					}
					if c.Bool("tokens") {
						return printDump(c.String("format"), tokens)
					}

					tree, err := parser.Parse(tokens, file)
					if err != nil {
						return tracerr.Wrap(err)
					}
					return printDump(c.String("format"), tree)
				},
			},
			{
				Name:      "typeinfo",
				Usage:     "dump typeinfo from a compiled library, or emit it for the project",
				ArgsUsage: "[<library.so>]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "emit",
						Usage: "write the project's typeinfo as LLVM IR to this file",
					},
				}, compileFlags...),
				Action: func(c *cli.Context) error {
					if out := c.String("emit"); out != "" {
						result, _, err := compileProject(c)
						if err != nil {
							return err
						}
						info, err := collectTypeInfo(result.Session)
						if err != nil {
							return tracerr.Wrap(err)
						}
						m, err := typeInfoModule(info)
						if err != nil {
							return tracerr.Wrap(err)
						}
						return tracerr.Wrap(ioutil.WriteFile(out, []byte(m.String()), 0644))
					}

					file := c.Args().First()
					if file == "" {
						return fmt.Errorf("no library provided")
					}
					data, err := getTypeInfoFromFile(file)
					if err != nil {
						return tracerr.Wrap(err)
					}
					repr.Println(data)
					return nil
				},
			},
			{
				Name:  "repl",
				Usage: "enter classes interactively",
				Action: func(c *cli.Context) error {
					return runREPL(os.Stdout)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
