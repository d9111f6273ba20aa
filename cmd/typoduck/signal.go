package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oukeidos/typoduck/internal/anim"
	"github.com/oukeidos/typoduck/internal/events"
	"github.com/oukeidos/typoduck/internal/logger"
)

const defaultBridgeAddr = "127.0.0.1:7777"

type signalOptions struct {
	addr    string
	wait    bool
	timeout time.Duration
}

func newSignalCmd() *cobra.Command {
	opts := signalOptions{}
	cmd := &cobra.Command{
		Use:   "signal <start|finish>",
		Short: "Send an animation signal to a running typoduck-gui",
		Long: "Send an animation signal to a running typoduck-gui started with --bridge-addr.\n" +
			"With --wait, a finish signal blocks until the duck has played its outro.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignal(cmd, &opts, args[0])
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", defaultBridgeAddr, "Event hub address (host:port or ws:// URL)")
	f.BoolVar(&opts.wait, "wait", false, "Wait for the animation-complete event")
	f.DurationVar(&opts.timeout, "timeout", anim.OutroBudget()+time.Second, "How long --wait blocks")
	return cmd
}

func runSignal(cmd *cobra.Command, opts *signalOptions, raw string) error {
	sig, ok := anim.ParseSignal(raw)
	if !ok {
		return fmt.Errorf("unknown signal %q (want %s or %s)", raw, anim.SignalStart, anim.SignalFinish)
	}

	ctx, stop := signalContext()
	defer stop()

	conn, err := events.Dial(ctx, opts.addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	var waiter *events.Waiter
	if opts.wait {
		waiter, err = events.Expect(ctx, conn, anim.CompleteChannel)
		if err != nil {
			return err
		}
		defer waiter.Release()
	}

	if err := conn.Emit(ctx, anim.PhaseChannel, string(sig)); err != nil {
		return err
	}
	logger.Debug("Signal sent", "signal", string(sig), "addr", opts.addr)

	if waiter == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Sent %s.\n", sig)
		return nil
	}
	wctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	if _, err := waiter.Wait(wctx); err != nil {
		return fmt.Errorf("no %s event within %s: %w", anim.CompleteChannel, opts.timeout, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %s; animation complete.\n", sig)
	return nil
}
