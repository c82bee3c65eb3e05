package main

import (
	"fmt"

	"github.com/philipparndt/gomvg/internal/meshstore"
	"github.com/philipparndt/gomvg/pkg/analysis"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [mesh.stl]",
	Short: "Display information about a built mesh",
	Long:  "Show the topology, surface area, bounding box, edge statistics and face planarity of a quad mesh written by replay --out.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	m, err := meshstore.LoadSTL(filename)
	if err != nil {
		return err
	}
	result := analysis.AnalyzeMesh(m)

	fmt.Println("Mesh Information")
	fmt.Println("================")
	if m.Name != "" {
		fmt.Printf("Name: %s\n", m.Name)
	}
	fmt.Printf("File: %s\n\n", filename)

	fmt.Println("Topology:")
	fmt.Printf("  Faces: %d\n", result.FaceCount)
	fmt.Printf("  Vertices: %d\n", result.VertexCount)
	fmt.Printf("  Edges: %d (%d on the boundary)\n", result.EdgeCount, result.BoundaryEdges)
	fmt.Printf("  Surface Area: %.6f square units\n\n", result.SurfaceArea)

	fmt.Println("Bounding Box:")
	fmt.Printf("  Min: %s\n", analysis.FormatVector(result.Min))
	fmt.Printf("  Max: %s\n", analysis.FormatVector(result.Max))
	fmt.Printf("  Size: %s\n\n", analysis.FormatVector(result.Dimensions))

	fmt.Println("Edge Lengths:")
	fmt.Printf("  Minimum: %.6f units\n", result.MinEdgeLength)
	fmt.Printf("  Maximum: %.6f units\n", result.MaxEdgeLength)
	fmt.Printf("  Average: %.6f units\n\n", result.AvgEdgeLength)

	fmt.Println("Faces:")
	for _, f := range result.Faces {
		fmt.Printf("  %3d area %.6f  planarity %.6f  normal %s\n", f.FaceID, f.Area, f.Planarity, analysis.FormatVector(f.Normal))
	}
	return nil
}
