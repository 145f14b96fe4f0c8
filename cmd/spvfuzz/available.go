package main

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"github.com/gogpu/spvfuzz/fuzz/available"
	"github.com/gogpu/spvfuzz/ir"
)

var availableCmd = &cobra.Command{
	Use:   "available <module.spv> <block-id> <index>",
	Short: "List the instructions available before a position in a block",
	Args:  cobra.ExactArgs(3),
	RunE:  runAvailable,
}

func runAvailable(cmd *cobra.Command, args []string) error {
	m, err := readModule(args[0])
	if err != nil {
		return err
	}
	blockID, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("block id: %w", err)
	}
	id, err := safecast.Conv[uint32](blockID)
	if err != nil {
		return fmt.Errorf("block id: %w", err)
	}
	index, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	insts, err := availableBefore(m, id, index)
	if err != nil {
		return err
	}
	for _, inst := range insts {
		fmt.Fprintln(cmd.OutOrStdout(), ir.FormatInstruction(inst))
	}
	return nil
}

// availableBefore returns the instructions available before position index
// of the block labelled id.
func availableBefore(m *ir.Module, id uint32, index int) ([]*ir.Instruction, error) {
	for _, fn := range m.Functions {
		block := fn.Block(id)
		if block == nil {
			continue
		}
		if index < 0 || index > len(block.Insts) {
			return nil, fmt.Errorf("index %d out of range for block %%%d", index, id)
		}
		if !m.Dominators(fn).Reachable(id) {
			return nil, fmt.Errorf("block %%%d is unreachable", id)
		}
		return available.New(m, nil).Before(block, index), nil
	}
	return nil, fmt.Errorf("no block %%%d", id)
}
