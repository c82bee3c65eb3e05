package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/scene"
)

// Mesh is a mesh whose faces are quads
type Mesh interface {
	scene.Mesh
	FaceCount() int
	Face(faceID int) geometry.Quad
}

// EdgeInfo contains information about an edge in the mesh
type EdgeInfo struct {
	EdgeID int
	Start  geometry.Vector3
	End    geometry.Vector3
	Length float64
	Faces  int // Number of faces using the edge
}

// FaceInfo contains the shape of one face
type FaceInfo struct {
	FaceID    int
	Area      float64
	Planarity float64 // Largest corner distance to the mean plane
	Normal    geometry.Vector3
	Center    geometry.Vector3
}

// MeasurementResult contains various measurements of a quad mesh
type MeasurementResult struct {
	Min           geometry.Vector3
	Max           geometry.Vector3
	Dimensions    geometry.Vector3
	SurfaceArea   float64
	VertexCount   int
	FaceCount     int
	EdgeCount     int
	BoundaryEdges int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
	MaxPlanarity  float64
	AllEdges      []EdgeInfo
	Faces         []FaceInfo
}

// AnalyzeMesh performs comprehensive analysis on a mesh
func AnalyzeMesh(m Mesh) *MeasurementResult {
	points := m.Points()
	result := &MeasurementResult{
		VertexCount: len(points),
		FaceCount:   m.FaceCount(),
		EdgeCount:   m.EdgeCount(),
		AllEdges:    make([]EdgeInfo, 0, m.EdgeCount()),
		Faces:       make([]FaceInfo, 0, m.FaceCount()),
	}

	if len(points) > 0 {
		result.Min, result.Max = points[0], points[0]
		for _, p := range points[1:] {
			result.Min = geometry.NewVector3(math.Min(result.Min.X, p.X), math.Min(result.Min.Y, p.Y), math.Min(result.Min.Z, p.Z))
			result.Max = geometry.NewVector3(math.Max(result.Max.X, p.X), math.Max(result.Max.Y, p.Y), math.Max(result.Max.Z, p.Z))
		}
		result.Dimensions = result.Max.Sub(result.Min)
	}

	for i := 0; i < m.FaceCount(); i++ {
		info := AnalyzeFace(i, m.Face(i))
		result.SurfaceArea += info.Area
		result.MaxPlanarity = math.Max(result.MaxPlanarity, info.Planarity)
		result.Faces = append(result.Faces, info)
	}

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	for e := 0; e < m.EdgeCount(); e++ {
		v0, v1, err := m.EdgeVertices(e)
		if err != nil {
			continue
		}
		length := points[v0].Distance(points[v1])
		faces := len(m.ConnectedFacesToEdge(e))
		result.AllEdges = append(result.AllEdges, EdgeInfo{
			EdgeID: e,
			Start:  points[v0],
			End:    points[v1],
			Length: length,
			Faces:  faces,
		})
		if faces < 2 {
			result.BoundaryEdges++
		}

		totalLength += length
		minLength = math.Min(minLength, length)
		maxLength = math.Max(maxLength, length)
	}

	if len(result.AllEdges) > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(len(result.AllEdges))
	}

	return result
}

// AnalyzeFace measures a single quad
func AnalyzeFace(faceID int, q geometry.Quad) FaceInfo {
	return FaceInfo{
		FaceID:    faceID,
		Area:      q.Area(),
		Planarity: q.Planarity(),
		Normal:    q.Normal(),
		Center:    q.Center(),
	}
}

// FindEdgesByLength finds all edges within a length range
func FindEdgesByLength(result *MeasurementResult, minLength, maxLength float64) []EdgeInfo {
	var edges []EdgeInfo
	for _, edge := range result.AllEdges {
		if edge.Length >= minLength && edge.Length <= maxLength {
			edges = append(edges, edge)
		}
	}
	return edges
}

// FindLongestEdges returns the N longest edges in the mesh
func FindLongestEdges(result *MeasurementResult, count int) []EdgeInfo {
	edges := make([]EdgeInfo, len(result.AllEdges))
	copy(edges, result.AllEdges)

	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Length > edges[j].Length
	})

	if count > len(edges) {
		count = len(edges)
	}

	return edges[:count]
}

// FindShortestEdges returns the N shortest edges in the mesh
func FindShortestEdges(result *MeasurementResult, count int) []EdgeInfo {
	edges := make([]EdgeInfo, len(result.AllEdges))
	copy(edges, result.AllEdges)

	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Length < edges[j].Length
	})

	if count > len(edges) {
		count = len(edges)
	}

	return edges[:count]
}

// FindNearestVertex finds the vertex of the mesh nearest to a given point.
// The index is -1 for an empty mesh.
func FindNearestVertex(m scene.Mesh, point geometry.Vector3) (int, geometry.Vector3, float64) {
	nearest := -1
	var nearestVertex geometry.Vector3
	minDistance := math.MaxFloat64

	for i, vertex := range m.Points() {
		distance := point.Distance(vertex)
		if distance < minDistance {
			minDistance = distance
			nearestVertex = vertex
			nearest = i
		}
	}

	return nearest, nearestVertex, minDistance
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.6f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}

// FormatVector2 formats a camera-space point
func FormatVector2(v geometry.Vector2) string {
	return fmt.Sprintf("(%.6f, %.6f)", v.X, v.Y)
}
