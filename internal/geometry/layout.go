package geometry

import "github.com/golang/geo/r3"

// TransducerPitchMM is the center-to-center spacing of the standard
// rectangular transducer grid, in millimeters.
const TransducerPitchMM = 10.16

// StandardArrayLayout returns the local-frame transducer positions (in
// meters) of a rows x cols rectangular grid on the device's own XY plane.
// The first transducer sits at the device origin; columns run along +X and
// rows along +Y.
func StandardArrayLayout(rows, cols int) []r3.Vector {
	pitch := TransducerPitchMM / 1000.0
	positions := make([]r3.Vector, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			positions = append(positions, r3.Vector{
				X: float64(col) * pitch,
				Y: float64(row) * pitch,
				Z: 0,
			})
		}
	}
	return positions
}
