// Command snapshot exports and imports RetrOS state snapshots against the
// configured durable store, without a running server.
//
// Usage:
//
//	snapshot export [-out file.json|file.json.zst] [-legacy]
//	snapshot import -in file.json|file.json.zst
//	snapshot reset
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"

	"github.com/morroware/retrosv2-sub000/internal/domain/snapshot"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/config"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/logging"
	"github.com/morroware/retrosv2-sub000/internal/infrastructure/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "export":
		err = runExport(cfg, args)
	case "import":
		err = runImport(cfg, args)
	case "reset":
		err = runReset(cfg)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	cyan.Println("snapshot - RetrOS state snapshot tool")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  export [-out FILE] [-legacy]   write a snapshot (stdout when -out is empty)")
	fmt.Println("  import -in FILE                restore a snapshot into the durable store")
	fmt.Println("  reset                          clear the durable store")
	fmt.Println()
	fmt.Printf("Files ending in %s are zstd-compressed.\n", snapshot.CompressedExt)
	fmt.Println("The durable store is selected by STORAGE_DRIVER / STORAGE_PATH or RETROS_CONFIG.")
}

func openStack(cfg *config.Config) (*server.Stack, error) {
	logger := logging.FromLevel("warn", false)
	return server.OpenStack(cfg, logger, nil)
}

func runExport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "output file")
	legacy := fs.Bool("legacy", false, "write the legacy export shape")
	_ = fs.Parse(args)

	stack, err := openStack(cfg)
	if err != nil {
		return err
	}
	defer stack.Close()

	var doc any
	if *legacy {
		doc = stack.Snapshots.ExportState()
	} else {
		snap, err := stack.Snapshots.ExportComplete()
		if err != nil {
			return err
		}
		doc = snap
	}

	if *out == "" {
		data, err := sonic.ConfigStd.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if err := snapshot.WriteFile(*out, doc); err != nil {
		return err
	}
	green := color.New(color.FgGreen)
	green.Printf("Exported snapshot to %s\n", *out)
	return nil
}

func runImport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("in", "", "snapshot file")
	_ = fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("import requires -in")
	}

	stack, err := openStack(cfg)
	if err != nil {
		return err
	}
	defer stack.Close()

	result, err := stack.Snapshots.ImportFile(*in)
	if err != nil {
		return err
	}

	yellow := color.New(color.FgYellow)
	for _, w := range result.Warnings {
		yellow.Printf("  warning: %s\n", w)
	}
	if !result.Success {
		return fmt.Errorf("import failed: %s", result.Error)
	}

	green := color.New(color.FgGreen)
	kind := "complete"
	if result.Legacy {
		kind = "legacy"
	}
	green.Printf("Imported %s snapshot from %s (%d warnings)\n", kind, *in, len(result.Warnings))
	return nil
}

func runReset(cfg *config.Config) error {
	stack, err := openStack(cfg)
	if err != nil {
		return err
	}
	defer stack.Close()

	stack.Bridge.Reset(stack.Store)
	color.New(color.FgGreen).Println("Durable state cleared")
	return nil
}
