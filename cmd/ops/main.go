package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"tropicalrevolution/internal/config"
	"tropicalrevolution/internal/game"
	"tropicalrevolution/internal/ops"
	"tropicalrevolution/internal/persist"
	"tropicalrevolution/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	_ = godotenv.Load()

	cmds := map[string]func(context.Context, []string) error{
		"list":    cmdList,
		"export":  cmdExport,
		"import":  cmdImport,
		"reset":   cmdReset,
		"backup":  cmdBackup,
		"restore": cmdRestore,
		"drill":   cmdDrill,
	}
	run, ok := cmds[os.Args[1]]
	if !ok {
		printUsage()
		os.Exit(2)
	}
	if err := run(context.Background(), os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// openStore opens the backend named by TR_STORE (and friends).
func openStore(ctx context.Context) (store.Store, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, store.Options{
		Backend: env.Store,
		DataDir: filepath.Join(env.DataDir, "saves"),
		Redis: store.RedisOptions{
			Addr:     env.RedisAddr,
			Password: env.RedisPassword,
			DB:       env.RedisDB,
		},
		SQLite: env.SQLitePath,
	})
}

func startState() (game.State, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return game.State{}, err
	}
	cfg, err := config.LoadOrDefault(env.ConfigPath)
	if err != nil {
		return game.State{}, err
	}
	return cfg.Rules().Start, nil
}

func cmdList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	keys, err := st.Keys(ctx, persist.KeyPrefix+":")
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

func cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	sessionID := fs.String("session", "", "session id (the tr_session cookie)")
	out := fs.String("out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	defaults, err := startState()
	if err != nil {
		return err
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return ops.ExportSave(ctx, st, *sessionID, defaults, w)
}

func cmdImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	sessionID := fs.String("session", "", "session id (the tr_session cookie)")
	in := fs.String("in", "", "input state json (default stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	defaults, err := startState()
	if err != nil {
		return err
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	var r io.Reader = os.Stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	s, err := ops.ImportSave(ctx, st, *sessionID, defaults, r, nil)
	if err != nil {
		return err
	}
	fmt.Printf("imported %s: year %d, budget %s\n", persist.Key(*sessionID), s.Year, game.FormatCurrency(s.Resources.Budget))
	return nil
}

func cmdReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	sessionID := fs.String("session", "", "session id (the tr_session cookie)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return ops.ResetSave(ctx, st, *sessionID)
}

func cmdBackup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	out := fs.String("out", "", "output archive path (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "tropical-saves-"+ts+".tar.gz")
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := ops.BackupSaves(ctx, st, *out)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d saves)\n", *out, n)
	return nil
}

func cmdRestore(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	archive := fs.String("archive", "", "input backup archive (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := ops.RestoreSaves(ctx, st, *archive)
	if err != nil {
		return err
	}
	fmt.Printf("restored %d saves\n", n)
	return nil
}

// cmdDrill backs up the configured store, restores into a scratch file store
// and compares digests.
func cmdDrill(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	workDir := fs.String("work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	ts := time.Now().UTC().Format("20060102T150405Z")
	archive := filepath.Join(*workDir, "tropical-drill-"+ts+".tar.gz")
	scratch, err := store.NewFileStore(filepath.Join(*workDir, "tropical-drill-restore-"+ts))
	if err != nil {
		return err
	}

	if _, err := ops.BackupSaves(ctx, st, archive); err != nil {
		return err
	}
	if _, err := ops.RestoreSaves(ctx, scratch, archive); err != nil {
		return err
	}

	srcDigest, err := ops.SavesDigest(ctx, st)
	if err != nil {
		return err
	}
	restoreDigest, err := ops.SavesDigest(ctx, scratch)
	if err != nil {
		return err
	}
	if srcDigest != restoreDigest {
		return fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoreDigest)
	}

	fmt.Println("backup:", archive)
	fmt.Println("digest:", srcDigest)
	return nil
}

func printUsage() {
	fmt.Println("usage:")
	fmt.Println("  tropical-ops list")
	fmt.Println("  tropical-ops export  --session <id> [--out save.json]")
	fmt.Println("  tropical-ops import  --session <id> [--in save.json]")
	fmt.Println("  tropical-ops reset   --session <id>")
	fmt.Println("  tropical-ops backup  [--out backups/saves.tar.gz]")
	fmt.Println("  tropical-ops restore --archive backups/saves.tar.gz")
	fmt.Println("  tropical-ops drill   [--work-dir /tmp]")
	fmt.Println("store selection comes from TR_STORE, TR_DATA_DIR, TR_REDIS_* and TR_SQLITE_PATH")
}
