package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bridge-node/modules/aggregate"
	"bridge-node/modules/common/common_types"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the node: ledger, optional relay and query api",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := loadNode(flags)
		if err != nil {
			return err
		}
		if err := n.withServices(); err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		err = aggregate.NewWithContext(ctx, n.plugins).Run()
		_ = n.base.Sync()
		return err
	},
}

var initCmd = &cobra.Command{
	Use:   "init <block.json>",
	Short: "initialize the ledger from a genesis block record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := readBlockRecord(args[0])
		if err != nil {
			return err
		}
		return withCaller(cmd, func(ctx context.Context, n *node, caller common_types.AccountID) error {
			return n.ledger.Initialize(ctx, caller, record)
		})
	},
}

var recordCmd = &cobra.Command{
	Use:   "record <block.json>...",
	Short: "record the next Ethereum blocks, minting their locked value to the caller",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records := make([]common_types.EthereumBlockRecord, 0, len(args))
		for _, path := range args {
			record, err := readBlockRecord(path)
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return withCaller(cmd, func(ctx context.Context, n *node, caller common_types.AccountID) error {
			for _, record := range records {
				if err := n.ledger.RecordHeader(ctx, caller, record); err != nil {
					return fmt.Errorf("block %d: %w", record.Header.Number, err)
				}
			}
			return nil
		})
	},
}

var remitCmd = &cobra.Command{
	Use:   "remit <to> <amount>",
	Short: "transfer wrapped tokens from the caller",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := common_types.ParseAccountID(args[0])
		if err != nil {
			return err
		}
		value, err := common_types.ParseBalance(args[1])
		if err != nil {
			return err
		}
		return withCaller(cmd, func(ctx context.Context, n *node, caller common_types.AccountID) error {
			return n.ledger.Remittance(ctx, caller, to, value)
		})
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <amount>",
	Short: "burn wrapped tokens of the caller to release them on Ethereum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := common_types.ParseBalance(args[0])
		if err != nil {
			return err
		}
		return withCaller(cmd, func(ctx context.Context, n *node, caller common_types.AccountID) error {
			return n.ledger.Unlock(ctx, caller, value)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show [account]",
	Short: "print the ledger status, the latest token supply or an account's state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(cmd, func(ctx context.Context, n *node) error {
			status, err := n.ledger.Status(ctx)
			if err != nil {
				return err
			}
			out := map[string]any{"status": status}

			supply, err := n.ledger.LatestToken(ctx)
			if err != nil {
				return err
			}
			if supply.IsSome() {
				out["token"] = supply.Unwrap()
			}

			if len(args) == 1 {
				owner, err := common_types.ParseAccountID(args[0])
				if err != nil {
					return err
				}
				state, err := n.ledger.CurrentState(ctx, owner)
				if err != nil {
					return err
				}
				if state.IsSome() {
					out["account"] = state.Unwrap()
				} else {
					out["account"] = nil
				}
			}
			return printJSON(cmd, out)
		})
	},
}

var resetIndexCmd = &cobra.Command{
	Use:   "reset-index",
	Short: "empty the mongo event index; run it while the node is stopped",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withNode(cmd, func(ctx context.Context, n *node) error {
			if n.indexDb == nil {
				return errIndexDisabled
			}
			if err := n.indexDb.Nuke(ctx); err != nil {
				return fmt.Errorf("reset event index: %w", err)
			}
			return printJSON(cmd, map[string]any{"reset": n.conf.DbName()})
		})
	},
}

var errIndexDisabled = errors.New("event index is not configured")

func withNode(cmd *cobra.Command, fn func(ctx context.Context, n *node) error) error {
	n, err := loadNode(flags)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	closeNode, err := n.open(ctx)
	if err != nil {
		return err
	}
	return errors.Join(fn(ctx, n), closeNode())
}

// withCaller runs a mutating command as --caller and prints the emitted
// notifications.
func withCaller(cmd *cobra.Command, fn func(ctx context.Context, n *node, caller common_types.AccountID) error) error {
	caller, err := flags.callerID()
	if err != nil {
		return err
	}
	return withNode(cmd, func(ctx context.Context, n *node) error {
		if err := fn(ctx, n, caller); err != nil {
			return err
		}
		for _, event := range n.emitted.Drain() {
			if err := printJSON(cmd, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
