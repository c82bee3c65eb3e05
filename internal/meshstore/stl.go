package meshstore

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/gomvg/pkg/geometry"
)

// triangle is one STL facet; quads are stored as two of them
type triangle [3]geometry.Vector3

// WriteSTL writes the mesh as ASCII STL, splitting every quad along its
// 0-2 diagonal
func WriteSTL(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	name := strings.ReplaceAll(m.Name, " ", "_")

	fmt.Fprintf(bw, "solid %s\n", name)
	for i := 0; i < m.FaceCount(); i++ {
		q := m.Face(i)
		n := q.Normal()
		for _, t := range []triangle{{q[0], q[1], q[2]}, {q[0], q[2], q[3]}} {
			fmt.Fprintf(bw, "  facet normal %g %g %g\n    outer loop\n", n.X, n.Y, n.Z)
			for _, v := range t {
				fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
			}
			fmt.Fprintf(bw, "    endloop\n  endfacet\n")
		}
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

// SaveSTL writes the mesh to a file
func SaveSTL(filename string, m *Mesh) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteSTL(file, m); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadSTL reads a mesh written by SaveSTL.
// It automatically detects whether the file is ASCII or binary format.
func LoadSTL(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	// Read first few bytes to determine format
	header := make([]byte, 6)
	n, err := file.Read(header)
	if err != nil {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to reset file pointer: %w", err)
	}

	var name string
	var triangles []triangle
	if n >= 5 && strings.HasPrefix(string(header[:5]), "solid") {
		name, triangles, err = parseASCII(file)
	} else {
		name, triangles, err = parseBinary(file, info.Size())
	}
	if err != nil {
		return nil, err
	}
	return fromTriangles(name, triangles)
}

// fromTriangles pairs consecutive facets (a, b, c), (a, c, d) back into quads
func fromTriangles(name string, triangles []triangle) (*Mesh, error) {
	if len(triangles)%2 != 0 {
		return nil, fmt.Errorf("odd number of facets (%d), not a quad mesh", len(triangles))
	}
	m := NewMesh(name)
	for i := 0; i < len(triangles); i += 2 {
		t1, t2 := triangles[i], triangles[i+1]
		if t1[0] != t2[0] || t1[2] != t2[1] {
			return nil, fmt.Errorf("facets %d and %d do not form a quad", i, i+1)
		}
		if err := m.AddFace(geometry.Quad{t1[0], t1[1], t1[2], t2[2]}); err != nil {
			return nil, fmt.Errorf("face %d: %w", i/2, err)
		}
	}
	return m, nil
}

// parseASCII parses an ASCII STL file
func parseASCII(reader io.Reader) (string, []triangle, error) {
	scanner := bufio.NewScanner(reader)

	var name string
	var triangles []triangle
	var vertices []geometry.Vector3

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}

		case "vertex":
			if len(fields) < 4 {
				return "", nil, fmt.Errorf("malformed vertex line %q", scanner.Text())
			}
			var xyz [3]float64
			for i := range xyz {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return "", nil, fmt.Errorf("malformed vertex line %q: %w", scanner.Text(), err)
				}
				xyz[i] = v
			}
			vertices = append(vertices, geometry.NewVector3(xyz[0], xyz[1], xyz[2]))

		case "endfacet":
			if len(vertices) == 3 {
				triangles = append(triangles, triangle{vertices[0], vertices[1], vertices[2]})
			}
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return "", nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}
	return name, triangles, nil
}

const (
	binaryHeaderSize = 84 // 80 byte header and the uint32 facet count
	binaryFacetSize  = 50
)

// parseBinary parses a binary STL file of the given size in bytes. The facet
// count in the header must fit into the file.
func parseBinary(reader io.Reader, size int64) (string, []triangle, error) {
	header := make([]byte, 80)
	if _, err := io.ReadFull(reader, header); err != nil {
		return "", nil, fmt.Errorf("failed to read header: %w", err)
	}
	name := string(bytes.TrimRight(header, "\x00"))

	var count uint32
	if err := binary.Read(reader, binary.LittleEndian, &count); err != nil {
		return "", nil, fmt.Errorf("failed to read triangle count: %w", err)
	}
	if available := (size - binaryHeaderSize) / binaryFacetSize; int64(count) > available {
		return "", nil, fmt.Errorf("header declares %d triangles, file holds %d", count, max(available, 0))
	}

	// Normal, three vertices and the attribute byte count
	var facet struct {
		Normal    [3]float32
		Vertices  [3][3]float32
		Attribute uint16
	}
	triangles := make([]triangle, 0, count)
	for i := uint32(0); i < count; i++ {
		if err := binary.Read(reader, binary.LittleEndian, &facet); err != nil {
			return "", nil, fmt.Errorf("failed to read triangle %d: %w", i, err)
		}
		var t triangle
		for j, v := range facet.Vertices {
			t[j] = geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2]))
		}
		triangles = append(triangles, t)
	}
	return name, triangles, nil
}
