package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/philipparndt/gomvg/internal/meshstore"
	"github.com/philipparndt/gomvg/internal/replay"
	"github.com/philipparndt/gomvg/internal/scenefile"
	"github.com/philipparndt/gomvg/pkg/analysis"
	"github.com/philipparndt/gomvg/pkg/watcher"
	"github.com/spf13/cobra"
)

var (
	replayWatch     bool
	replayNoConnect bool
	replayPredict   bool
	replayOut       string
)

var replayCmd = &cobra.Command{
	Use:   "replay [scene]",
	Short: "Replay the scripted events of a scene",
	Long: `Run every event of the scene's script through an interaction session and
report the state after each event and the meshes that were built.
With --watch the scene is replayed again whenever it or a file it references changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVarP(&replayWatch, "watch", "w", false, "Replay again when the scene changes")
	replayCmd.Flags().BoolVar(&replayNoConnect, "no-connect", false, "Do not chain faces")
	replayCmd.Flags().BoolVar(&replayPredict, "predict", false, "Complete three points into a parallelogram")
	replayCmd.Flags().StringVarP(&replayOut, "out", "o", "", "Directory to write the built meshes to as STL")
}

func runReplay(cmd *cobra.Command, args []string) error {
	filename := args[0]

	files, err := replayOnce(filename)
	if err != nil || !replayWatch {
		return err
	}

	fw, err := watcher.NewFileWatcher(200 * time.Millisecond)
	if err != nil {
		return err
	}
	defer fw.Close()

	var onChange func(string)
	onChange = func(changed string) {
		fmt.Printf("\n%s changed, replaying\n\n", changed)
		files, err := replayOnce(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		// The scene may reference other files now
		if err := fw.Watch(files, onChange); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	if err := fw.Watch(files, onChange); err != nil {
		return err
	}
	fw.Start()

	fmt.Printf("\nWatching %s, press Ctrl+C to stop\n", filename)
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	return nil
}

// replayOnce replays the scene and returns the files to watch
func replayOnce(filename string) ([]string, error) {
	scene, err := scenefile.Load(filename)
	if err != nil {
		return []string{filename}, err
	}

	var overrides replay.Overrides
	if replayNoConnect {
		connect := false
		overrides.ConnectFace = &connect
	}
	if replayPredict {
		predict := true
		overrides.PredictFourthPoint = &predict
	}

	report, err := replay.Run(scene, overrides)
	if err != nil {
		return append([]string{filename}, scene.Files()...), err
	}
	printReport(filename, report)

	if replayOut != "" {
		if err := writeMeshes(replayOut, report.Store); err != nil {
			return nil, err
		}
	}
	return append([]string{filename}, scene.Files()...), nil
}

func printReport(filename string, report *replay.Report) {
	fmt.Println("Replay")
	fmt.Println("======")
	fmt.Printf("Scene: %s\n\n", filename)

	for _, step := range report.Steps {
		line := fmt.Sprintf("  %3d %-17s (%7.1f, %7.1f)  pick=%-5s state=%s",
			step.Index, step.Event.Type, step.X, step.Y, step.Pick, step.State)
		if step.Err != nil {
			line += fmt.Sprintf("  error: %v", step.Err)
		}
		fmt.Println(line)
	}

	fmt.Printf("\nFinal state: %s", report.Final.State)
	if n := len(report.Final.Points); n > 0 {
		fmt.Printf(" (%d pending points)", n)
	}
	fmt.Println()

	for _, m := range report.Store.Meshes() {
		result := analysis.AnalyzeMesh(m)
		fmt.Printf("\nMesh %s (%s):\n", m.Name, m.ID())
		fmt.Printf("  Faces: %d\n", result.FaceCount)
		fmt.Printf("  Vertices: %d\n", result.VertexCount)
		fmt.Printf("  Edges: %d (%d on the boundary)\n", result.EdgeCount, result.BoundaryEdges)
		fmt.Printf("  Surface Area: %s\n", analysis.FormatMeasurement(result.SurfaceArea, "square units"))
		fmt.Printf("  Max Planarity Error: %s\n", analysis.FormatMeasurement(result.MaxPlanarity, ""))
		fmt.Printf("  Min: %s\n", analysis.FormatVector(result.Min))
		fmt.Printf("  Max: %s\n", analysis.FormatVector(result.Max))
	}

	if failed := report.Failed(); len(failed) > 0 {
		fmt.Printf("\n%d of %d events failed\n", len(failed), len(report.Steps))
	}
}

func writeMeshes(dir string, store *meshstore.Store) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, m := range store.Meshes() {
		path := filepath.Join(dir, m.Name+".stl")
		if err := meshstore.SaveSTL(path, m); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}
