package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/spvfuzz/ir"
)

var disCmd = &cobra.Command{
	Use:   "dis <module.spv>",
	Short: "Disassemble a SPIR-V module",
	Args:  cobra.ExactArgs(1),
	RunE:  runDis,
}

func runDis(cmd *cobra.Command, args []string) error {
	m, err := readModule(args[0])
	if err != nil {
		return err
	}
	return ir.WriteDisassembly(cmd.OutOrStdout(), m)
}

func readModule(path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module: %w", err)
	}
	m, err := ir.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
