package main

import (
	"fmt"

	"github.com/philipparndt/gomvg/internal/meshstore"
	"github.com/philipparndt/gomvg/pkg/analysis"
	"github.com/spf13/cobra"
)

var (
	edgesCount     int
	edgesLongest   bool
	edgesShortest  bool
	edgesBoundary  bool
	edgesMinLength float64
	edgesMaxLength float64
)

var edgesCmd = &cobra.Command{
	Use:   "edges [mesh.stl]",
	Short: "List and measure the edges of a built mesh",
	Long:  "Find and measure edges, including longest, shortest, boundary edges that can still be extended, or edges within a length range.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdges,
}

func init() {
	rootCmd.AddCommand(edgesCmd)

	edgesCmd.Flags().IntVarP(&edgesCount, "count", "n", 10, "Number of edges to display")
	edgesCmd.Flags().BoolVarP(&edgesLongest, "longest", "l", false, "Show longest edges")
	edgesCmd.Flags().BoolVarP(&edgesShortest, "shortest", "s", false, "Show shortest edges")
	edgesCmd.Flags().BoolVarP(&edgesBoundary, "boundary", "b", false, "Show only edges with a single face")
	edgesCmd.Flags().Float64Var(&edgesMinLength, "min", 0.0, "Minimum edge length filter")
	edgesCmd.Flags().Float64Var(&edgesMaxLength, "max", 0.0, "Maximum edge length filter")

	edgesCmd.MarkFlagsMutuallyExclusive("longest", "shortest")
}

func runEdges(cmd *cobra.Command, args []string) error {
	m, err := meshstore.LoadSTL(args[0])
	if err != nil {
		return err
	}
	result := analysis.AnalyzeMesh(m)

	var edges []analysis.EdgeInfo
	var title string

	switch {
	case edgesLongest:
		edges = analysis.FindLongestEdges(result, result.EdgeCount)
		title = "Longest Edges"
	case edgesShortest:
		edges = analysis.FindShortestEdges(result, result.EdgeCount)
		title = "Shortest Edges"
	case edgesMaxLength > 0:
		edges = analysis.FindEdgesByLength(result, edgesMinLength, edgesMaxLength)
		title = fmt.Sprintf("Edges between %.6f and %.6f units", edgesMinLength, edgesMaxLength)
	default:
		edges = result.AllEdges
		title = "All Edges"
	}

	if edgesBoundary {
		boundary := edges[:0:0]
		for _, e := range edges {
			if e.Faces < 2 {
				boundary = append(boundary, e)
			}
		}
		edges = boundary
		title = "Boundary " + title
	}
	found := len(edges)
	if len(edges) > edgesCount {
		edges = edges[:edgesCount]
	}

	fmt.Printf("%s (showing %d of %d)\n", title, len(edges), found)
	fmt.Println("====================")
	fmt.Printf("Total edges in mesh: %d\n", result.EdgeCount)
	fmt.Printf("Min edge length: %.6f units\n", result.MinEdgeLength)
	fmt.Printf("Max edge length: %.6f units\n", result.MaxEdgeLength)
	fmt.Printf("Avg edge length: %.6f units\n\n", result.AvgEdgeLength)

	if len(edges) == 0 {
		fmt.Println("No edges found matching the criteria.")
		return nil
	}

	fmt.Printf("%-6s %-35s %-35s %-15s %s\n", "Edge", "Start", "End", "Length", "Faces")
	fmt.Println("-------------------------------------------------------------------------------------------------------------------")
	for _, edge := range edges {
		fmt.Printf("%-6d %-35s %-35s %-15.6f %d\n",
			edge.EdgeID,
			analysis.FormatVector(edge.Start),
			analysis.FormatVector(edge.End),
			edge.Length,
			edge.Faces)
	}
	return nil
}
