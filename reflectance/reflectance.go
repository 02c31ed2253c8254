// Package reflectance computes s- and p-polarized spectral reflectance
// of a planar multilayer stack via the Parratt recursion.
package reflectance

import (
	"math"
	"math/cmplx"

	"github.com/AnkushinDaniil/thinfilm/entity"
	"github.com/AnkushinDaniil/thinfilm/material"
)

// Solver evaluates multilayer reflectance against one material
// database. It is stateless apart from the database reference and safe
// for concurrent use on disjoint inputs.
type Solver struct {
	db *material.Database
}

func NewSolver(db *material.Database) *Solver {
	return &Solver{db: db}
}

// Compute returns the s- and p-polarized reflectance of the stack on
// the given wavelength grid (nm) at the given incidence angle
// (degrees). Both results are aligned to the grid. An empty grid
// yields empty results.
func (s *Solver) Compute(layers entity.Stack, substrate string, wavelengths []float64, angleDeg float64) (rs, rp []float64, err error) {
	if len(wavelengths) == 0 {
		return []float64{}, []float64{}, nil
	}

	// Medium sequence: incident medium, films in order, substrate.
	ids := make([]string, 0, len(layers)+2)
	thickness := make([]float64, 0, len(layers)+2)
	ids = append(ids, "air")
	thickness = append(thickness, 0)
	for _, layer := range layers {
		ids = append(ids, layer.Material)
		thickness = append(thickness, layer.Thickness)
	}
	ids = append(ids, substrate)
	thickness = append(thickness, 0)

	indices := make([][]complex128, len(ids))
	for i, id := range ids {
		indices[i], err = s.db.Index(id, wavelengths)
		if err != nil {
			return nil, nil, err
		}
	}

	theta := angleDeg * math.Pi / 180
	// Lateral wavevector invariant, conserved across the stack.
	beta := real(indices[0][0]) * math.Sin(theta)

	rs = make([]float64, len(wavelengths))
	rp = make([]float64, len(wavelengths))
	for w, lambda := range wavelengths {
		ampS := complex(0, 0) // r_{N+1}: semi-infinite substrate tail
		ampP := complex(0, 0)

		kzNext := kz(lambda, indices[len(ids)-1][w], beta)
		nNext := indices[len(ids)-1][w]

		// Deepest interface upward to the incident medium.
		for j := len(ids) - 2; j >= 0; j-- {
			nJ := indices[j][w]
			kzJ := kz(lambda, nJ, beta)

			fS, fNextS := kzJ, kzNext
			fP, fNextP := kzJ/(nJ*nJ), kzNext/(nNext*nNext)

			freS := (fS - fNextS) / (fS + fNextS)
			freP := (fP - fNextP) / (fP + fNextP)

			phase := cmplx.Exp(complex(0, 2) * kzJ * complex(thickness[j], 0))

			ampS = phase * (freS + ampS) / (1 + freS*ampS)
			ampP = phase * (freP + ampP) / (1 + freP*ampP)

			kzNext, nNext = kzJ, nJ
		}

		mS := cmplx.Abs(ampS)
		mP := cmplx.Abs(ampP)
		rs[w] = mS * mS
		rp[w] = mP * mP
	}
	return rs, rp, nil
}

// kz is the complex vertical wavevector of a medium. The square-root
// branch keeps a non-negative imaginary part so evanescent and
// absorbing fields decay into the stack.
func kz(lambda float64, n complex128, beta float64) complex128 {
	root := cmplx.Sqrt(n*n - complex(beta*beta, 0))
	if imag(root) < 0 {
		root = -root
	}
	return complex(2*math.Pi/lambda, 0) * root
}
