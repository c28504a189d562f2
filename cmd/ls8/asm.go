package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hexaflex/ls8/asm"
)

var asmCmd = &cobra.Command{
	Use:   "asm [flags] source",
	Short: "Assemble an LS-8 program into a raw byte stream.",
	Long: `Assemble LS-8 source into the raw byte stream which is loaded into
memory. The output defaults to the source path with a .bin extension.
Use "-o -" to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		output := GetString(cmd, "out")
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + ".bin"
		}

		fd, err := os.Open(input)
		if err != nil {
			return err
		}
		defer fd.Close()

		program, err := asm.Parse(fd, input)
		if err != nil {
			return err
		}

		if output == "-" {
			_, err = os.Stdout.Write(program)
			return err
		}

		if dir := filepath.Dir(output); dir != "" {
			if err := os.MkdirAll(dir, 0744); err != nil {
				return err
			}
		}

		if err := os.WriteFile(output, program, 0644); err != nil {
			return errors.Wrap(err, "write program")
		}

		log.Debugf("%s: %d bytes written to %s", input, len(program), output)
		return nil
	},
}

var disasmCmd = &cobra.Command{
	Use:   "disasm program",
	Short: "Print a listing of an LS-8 program.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		program, err := asm.ReadProgram(args[0])
		if err != nil {
			return err
		}
		return asm.Disassemble(os.Stdout, program)
	},
}

func init() {
	asmCmd.Flags().StringP("out", "o", "", "output file")
	rootCmd.AddCommand(asmCmd)
	rootCmd.AddCommand(disasmCmd)
}
