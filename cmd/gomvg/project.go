package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/philipparndt/gomvg/internal/scenefile"
	"github.com/philipparndt/gomvg/pkg/analysis"
	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/reconstruct"
	"github.com/spf13/cobra"
)

var (
	projectPoints string
	projectPixels bool
	projectCamera string
)

var projectCmd = &cobra.Command{
	Use:   "project [scene]",
	Short: "Reconstruct a 3D face from 2D points",
	Long: `Lift three or four points of a camera view onto the scene's point cloud and
print the resulting planar face. Points are given in camera space unless --pixels is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)

	projectCmd.Flags().StringVarP(&projectPoints, "points", "p", "", `Points as "x,y;x,y;x,y[;x,y]"`)
	projectCmd.Flags().BoolVar(&projectPixels, "pixels", false, "Points are pixels of the scene's view")
	projectCmd.Flags().StringVar(&projectCamera, "camera", "", "Camera to look through (default: first)")

	_ = projectCmd.MarkFlagRequired("points")
}

func runProject(cmd *cobra.Command, args []string) error {
	scene, err := scenefile.Load(args[0])
	if err != nil {
		return err
	}
	camera, err := scene.Camera(projectCamera)
	if err != nil {
		return err
	}
	cloud, err := scene.LoadCloud()
	if err != nil {
		return err
	}
	view := scene.NewView(camera, nil)

	points, err := parsePoints(projectPoints)
	if err != nil {
		return err
	}
	if projectPixels {
		for i, p := range points {
			if points[i], err = view.ScreenToCamera(p.X, p.Y); err != nil {
				return err
			}
		}
	}

	recon := reconstruct.New(cloud)
	recon.Fallback = scene.FallbackPlane()
	face, err := recon.ProjectFace2D(view, points, reconstruct.Options{})
	if err != nil {
		return err
	}

	info := analysis.AnalyzeFace(0, face)
	fmt.Println("Projected Face")
	fmt.Println("==============")
	fmt.Printf("Camera: %s\n\n", camera.Name)
	for i, p := range face {
		fmt.Printf("  P%d: %s\n", i, analysis.FormatVector(p))
	}
	lengths := face.EdgeLengths()
	fmt.Printf("\n  Edge Lengths: %.6f, %.6f, %.6f, %.6f\n", lengths[0], lengths[1], lengths[2], lengths[3])
	fmt.Printf("  Area: %s\n", analysis.FormatMeasurement(info.Area, "square units"))
	fmt.Printf("  Normal: %s\n", analysis.FormatVector(info.Normal))
	fmt.Printf("  Planarity Error: %s\n", analysis.FormatMeasurement(info.Planarity, ""))
	return nil
}

// parsePoints reads "x,y;x,y;..." into 2D points
func parsePoints(s string) ([]geometry.Vector2, error) {
	var points []geometry.Vector2
	for i, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		xy := strings.Split(pair, ",")
		if len(xy) != 2 {
			return nil, fmt.Errorf("point %d: expected x,y, got %q", i+1, pair)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xy[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i+1, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(xy[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i+1, err)
		}
		points = append(points, geometry.NewVector2(x, y))
	}
	return points, nil
}
