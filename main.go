package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/duynguyendang/termgraph/internal/manager"
	"github.com/duynguyendang/termgraph/pkg/dictionary"
	"github.com/duynguyendang/termgraph/pkg/evs"
	"github.com/duynguyendang/termgraph/pkg/graph"
	"github.com/duynguyendang/termgraph/pkg/ingest"
	"github.com/duynguyendang/termgraph/pkg/mcp"
	"github.com/duynguyendang/termgraph/pkg/normalize"
	"github.com/duynguyendang/termgraph/pkg/server"
	"github.com/duynguyendang/termgraph/pkg/store"
)

var (
	dataDir   string
	rulesPath string
	lowMem    bool
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "termgraph",
		Short: "Terminology concept graph: ingest, query and serve",
	}
	root.PersistentFlags().StringVar(&dataDir, "data", "./data", "base data directory (one subdirectory per release)")
	root.PersistentFlags().BoolVar(&lowMem, "low-mem", false, "optimize for low-memory environments (e.g., Cloud Run with 1GB RAM)")

	ingestCmd := &cobra.Command{
		Use:   "ingest <dump_file> <release>",
		Short: "Parse and normalize a raw dump into a release store",
		Args:  cobra.ExactArgs(2),
		RunE:  runIngest,
	}
	ingestCmd.Flags().StringVar(&rulesPath, "rules", "", "YAML rules file overriding the embedded normalization rules")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		RunE:  runServe,
	}

	mcpCmd := &cobra.Command{
		Use:   "mcp <release>",
		Short: "Expose one release over MCP on Stdio",
		Args:  cobra.ExactArgs(1),
		RunE:  runMCP,
	}

	ancestorsCmd := &cobra.Command{
		Use:   "ancestors <release> <code>...",
		Short: "Print the ancestor closure of the seed codes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraversal(args, graph.Ancestors)
		},
	}

	descendantsCmd := &cobra.Command{
		Use:   "descendants <release> <code>...",
		Short: "Print the descendant closure of the seed codes",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraversal(args, graph.Descendants)
		},
	}

	dictCmd := &cobra.Command{
		Use:   "dict <release> <group>",
		Short: "Print a canonical dictionary grouping (disease, drug, gene, alteration)",
		Args:  cobra.ExactArgs(2),
		RunE:  runDict,
	}

	root.AddCommand(ingestCmd, serveCmd, mcpCmd, ancestorsCmd, descendantsCmd, dictCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	dumpPath, release := args[0], args[1]

	rules := normalize.DefaultRules()
	if rulesPath != "" {
		loaded, err := normalize.LoadRules(rulesPath)
		if err != nil {
			return err
		}
		rules = loaded
	}

	fmt.Printf("Running in INGESTION mode.\nDump: %s\nRelease: %s\n", dumpPath, release)

	s, err := openRelease(release, false)
	if err != nil {
		return err
	}
	defer s.Close()

	return ingest.Run(s, rules, dumpPath)
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting REST API Server. Data root: %s\n", dataDir)

	profile := manager.MemoryProfileDefault
	if lowMem {
		profile = manager.MemoryProfileLow
		fmt.Println("Running in LOW MEMORY mode")
	}

	mgr := manager.NewStoreManager(dataDir, profile, true)
	defer mgr.CloseAll()

	var expander *evs.Expander
	if base := os.Getenv("EVS_API_URL"); base != "" {
		expander = evs.NewExpander(evs.NewClient(base))
	}

	srv := server.NewServer(mgr, expander)
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := srv.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	return nil
}

func runMCP(cmd *cobra.Command, args []string) error {
	s, err := openRelease(args[0], true)
	if err != nil {
		return err
	}
	defer s.Close()
	return mcp.Run(context.Background(), s)
}

func runTraversal(args []string, walk func(*store.Snapshot, []string) []graph.Hit) error {
	s, err := openRelease(args[0], true)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, hit := range walk(s.Snapshot(), args[1:]) {
		fmt.Printf("%d\t%s\t%s\n", hit.Distance, hit.Code, hit.Term)
	}
	return nil
}

func runDict(cmd *cobra.Command, args []string) error {
	s, err := openRelease(args[0], true)
	if err != nil {
		return err
	}
	defer s.Close()

	dict, err := dictionary.BuildGroup(s.Snapshot(), dictionary.Group(args[1]))
	if err != nil {
		return err
	}

	snap := s.Snapshot()
	for _, code := range snap.Codes() {
		if syns, ok := dict[code]; ok {
			fmt.Printf("%s\t%s\n", code, strings.Join(syns, "|"))
		}
	}
	return nil
}

func openRelease(release string, readOnly bool) (*store.ConceptStore, error) {
	cfg := store.DefaultConfig(dataDir + "/" + release)
	cfg.ReadOnly = readOnly
	if readOnly {
		cfg.BypassLockGuard = true
	}
	if lowMem {
		cfg.Profile = "Safe-Serving"
		cfg.BlockCacheSize = 64 << 20
		cfg.IndexCacheSize = 64 << 20
	}
	return store.Open(cfg)
}
