package model

import "github.com/google/uuid"

// Shape is the symbol class assigned to a glyph by the recognizer.
type Shape string

const (
	ShapeGClef      Shape = "G_CLEF"
	ShapeGClefSmall Shape = "G_CLEF_SMALL"
	ShapeGClef8va   Shape = "G_CLEF_8VA"
	ShapeGClef8vb   Shape = "G_CLEF_8VB"
	ShapeCClef      Shape = "C_CLEF"
	ShapeFClef      Shape = "F_CLEF"
	ShapeFClefSmall Shape = "F_CLEF_SMALL"
	ShapeFClef8va   Shape = "F_CLEF_8VA"
	ShapeFClef8vb   Shape = "F_CLEF_8VB"
	ShapePercClef   Shape = "PERCUSSION_CLEF"
	ShapeSharp      Shape = "SHARP"
	ShapeFlat       Shape = "FLAT"
)

// Point is a pixel location on the scanned page.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Glyph is a recognized symbol hypothesis coming out of the segmentation
// stage. Grade is the recognizer's confidence in [0,1].
type Glyph struct {
	ID       string  `json:"id"`
	Shape    Shape   `json:"shape"`
	Grade    float64 `json:"grade"`
	Location Point   `json:"location"`
}

func NewGlyph(shape Shape, grade float64, location Point) Glyph {
	return Glyph{
		ID:       uuid.New().String(),
		Shape:    shape,
		Grade:    grade,
		Location: location,
	}
}
