package utils

const (
	NODETOL = 1.e-12
)

// GeomType enumerates the reference geometries an element or face can carry.
type GeomType int

const (
	GeomUnknown GeomType = iota
	// 0D geometries
	GeomPoint
	// 1D geometries
	GeomSegment
	// 2D geometries
	GeomTriangle
	GeomQuad
	// 3D geometries
	GeomTet
	GeomHex
)

func (g GeomType) String() string {
	names := []string{
		"Unknown",
		"Point",
		"Segment",
		"Triangle", "Quad",
		"Tet", "Hex",
	}
	if int(g) < len(names) {
		return names[g]
	}
	return "Invalid"
}

// Dimension of the reference geometry.
func (g GeomType) Dimension() int {
	switch g {
	case GeomPoint:
		return 0
	case GeomSegment:
		return 1
	case GeomTriangle, GeomQuad:
		return 2
	case GeomTet, GeomHex:
		return 3
	}
	return -1
}

// FaceGeom is the geometry of the faces bounding g.
func (g GeomType) FaceGeom() GeomType {
	switch g {
	case GeomSegment:
		return GeomPoint
	case GeomTriangle, GeomQuad:
		return GeomSegment
	case GeomTet:
		return GeomTriangle
	case GeomHex:
		return GeomQuad
	}
	return GeomUnknown
}

// NumFaces bounding the reference geometry.
func (g GeomType) NumFaces() int {
	switch g {
	case GeomSegment:
		return 2
	case GeomTriangle:
		return 3
	case GeomQuad:
		return 4
	case GeomTet:
		return 4
	case GeomHex:
		return 6
	}
	return 0
}

// NumVerts of the reference geometry.
func (g GeomType) NumVerts() int {
	switch g {
	case GeomPoint:
		return 1
	case GeomSegment:
		return 2
	case GeomTriangle:
		return 3
	case GeomQuad:
		return 4
	case GeomTet:
		return 4
	case GeomHex:
		return 8
	}
	return 0
}
