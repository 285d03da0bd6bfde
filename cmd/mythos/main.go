// Command mythos explores the mythological/archetypal catalogs from a
// terminal: load and index the four catalogs, search them, trace
// entity -> archetype -> node chains, and snapshot a session to SQLite.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	hackos "github.com/hack-pad/hackpadfs/os"

	"github.com/kittclouds/mythos/internal/store"
	"github.com/kittclouds/mythos/pkg/catalog"
	"github.com/kittclouds/mythos/pkg/engine"
	"github.com/kittclouds/mythos/pkg/feed"
)

var (
	flagBaseURL string
	flagDataDir string
	flagVerbose bool
	flagK       int
)

func main() {
	root := &cobra.Command{
		Use:           "mythos",
		Short:         "Explore the archetypal catalogs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "base URL serving the catalog JSON documents")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "local directory holding the catalog JSON documents")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	similar := &cobra.Command{
		Use:   "similar <archetype-id>",
		Short: "Nearest archetypes by coordinate similarity",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimilar,
	}
	similar.Flags().IntVarP(&flagK, "top", "k", 5, "number of neighbors")

	root.AddCommand(
		&cobra.Command{
			Use:   "load",
			Short: "Fetch all catalogs and print an index summary",
			Args:  cobra.NoArgs,
			RunE:  runLoad,
		},
		&cobra.Command{
			Use:   "search <query>",
			Short: "Substring search across all four catalogs",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runSearch,
		},
		&cobra.Command{
			Use:   "chain <entity-name>",
			Short: "Trace the entity -> archetype -> node chain",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runChain,
		},
		similar,
		&cobra.Command{
			Use:   "related <archetype-id>",
			Short: "Outgoing relationships of an archetype",
			Args:  cobra.ExactArgs(1),
			RunE:  runRelated,
		},
		&cobra.Command{
			Use:   "snapshot <file>",
			Short: "Persist the settled session to a SQLite snapshot",
			Args:  cobra.ExactArgs(1),
			RunE:  runSnapshot,
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if flagVerbose {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

// newEngine builds a loaded engine from --data-dir or --base-url.
func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	logger := newLogger()

	var fetcher catalog.Fetcher
	urls := map[catalog.Key]string{}

	if flagDataDir != "" {
		abs, err := filepath.Abs(flagDataDir)
		if err != nil {
			return nil, err
		}
		// hackpadfs/os paths are rooted and slash-separated.
		dir := strings.TrimPrefix(filepath.ToSlash(abs), "/")
		fetcher = catalog.NewFSFetcher(hackos.NewFS())
		for key, path := range catalog.DefaultURLs {
			urls[key] = dir + "/" + filepath.Base(path)
		}
	} else {
		fetcher = catalog.NewHTTPFetcher(nil)
		base := strings.TrimSuffix(flagBaseURL, "/")
		for key, path := range catalog.DefaultURLs {
			if base == "" {
				urls[key] = path
			} else {
				urls[key] = base + "/" + path
			}
		}
	}

	eng := engine.New(fetcher, urls, logger)
	if err := eng.LoadAll(cmd.Context()); err != nil {
		return nil, err
	}
	return eng, nil
}

func runLoad(cmd *cobra.Command, _ []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	idx, err := eng.Indices()
	if err != nil {
		return err
	}

	fmt.Printf("archetypes: %d\n", len(idx.Archetypes))
	fmt.Printf("entities:   %d (%d mapped)\n", len(idx.Entities), mappedCount(idx.Entities))
	fmt.Printf("patterns:   %d\n", len(idx.Patterns))
	fmt.Printf("affinity nodes: %d\n", len(idx.ArchetypesByNode))
	fmt.Printf("relationships:  %d (%d dangling)\n",
		idx.Relationships.EdgeCount(), idx.Relationships.DanglingCount())
	return nil
}

func mappedCount(entities []*catalog.Entity) int {
	n := 0
	for _, e := range entities {
		if e.Mapped() {
			n++
		}
	}
	return n
}

func runSearch(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	results, err := eng.Search(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if results.Empty() {
		fmt.Println("no results")
		return nil
	}

	for _, n := range results.Nodes {
		fmt.Printf("node      %-4s %s (%s)\n", n.Code, n.Title, n.Role)
	}
	for _, a := range results.Archetypes {
		fmt.Printf("archetype %s  %s [%s]\n", a.ID, a.Name, a.System)
	}
	for _, e := range results.Entities {
		fmt.Printf("entity    %s (%s, %s)\n", e.Name, e.Type, e.PrimaryTradition)
	}
	for _, p := range results.Patterns {
		fmt.Printf("pattern   %s [%s]\n", p.Name, p.Arc)
	}
	return nil
}

func runChain(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	result, err := eng.ResolveChain(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if !result.EntityOK {
		fmt.Println("entity: not found")
		return nil
	}

	fmt.Printf("entity:    %s\n", result.Entity.Name)
	if result.ArchetypeOK {
		fmt.Printf("archetype: %s (%s)\n", result.Archetype.Name, result.Archetype.ID)
	} else {
		fmt.Println("archetype: no mapping found")
	}
	if result.NodeOK {
		fmt.Printf("node:      %s %s\n", result.Node.Code, result.Node.Title)
	} else {
		fmt.Println("node:      cannot trace")
	}
	return nil
}

func runSimilar(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	neighbors, err := eng.Nearest(args[0], flagK)
	if err != nil {
		return err
	}
	for _, a := range neighbors {
		fmt.Printf("%s  %s [%s]\n", a.ID, a.Name, a.System)
	}
	return nil
}

func runRelated(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	links, err := eng.Related(args[0])
	if err != nil {
		return err
	}
	for _, link := range links {
		fmt.Printf("%-12s %.2f  %s\n", link.Edge.Type, link.Edge.Weight, link.ID)
	}

	// Page the mapped entities the way the explorer's cards do.
	batch, err := eng.EntitiesForArchetype(args[0], 0, feed.DefaultBatchSize)
	if err != nil {
		return err
	}
	for _, e := range batch.Items {
		fmt.Printf("entity: %s\n", e.Name)
	}
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(cmd)
	if err != nil {
		return err
	}

	cats, err := eng.Catalogs()
	if err != nil {
		return err
	}

	snap, err := store.NewSnapshotStoreWithDSN(args[0])
	if err != nil {
		return err
	}
	defer snap.Close()

	if err := snap.SaveCatalogs(cats); err != nil {
		return err
	}

	archetypes, entities, patterns, err := snap.Counts()
	if err != nil {
		return err
	}
	fmt.Printf("snapshot written to %s (%d archetypes, %d entities, %d patterns)\n",
		args[0], archetypes, entities, patterns)
	return nil
}
