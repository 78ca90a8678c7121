package kriging

import (
	"gonum.org/v1/gonum/mat"

	"github.com/CGR-Aachen/gempy/pkg/geometry"
)

// faultDriftEpsilon is added to the fault-drift blocks so that a fault
// whose block is constant over the series' points still contributes a
// nonzero column.
const faultDriftEpsilon = 1e-4

// BuildSystem assembles the symmetric block cokriging matrix and its
// right-hand side for one series. The row/column layout is
// [gradients | interfaces | universal drift | fault drift]; the right-hand
// side carries the Cartesian components of the unit dip vectors in the
// gradient rows and zeros elsewhere.
func BuildSystem(ctx *SeriesContext) (*mat.Dense, *mat.VecDense, error) {
	nG := ctx.NumGradientRows()
	nI := ctx.NumInterfaceRows()
	nU, err := ctx.NumDriftRows()
	if err != nil {
		return nil, nil, err
	}
	nF := ctx.NumFaultRows()
	size := nG + nI + nU + nF

	cG := ctx.Kernel.GradientCov(ctx.Dips)
	cI := ctx.Kernel.InterfaceCov(ctx.Rest, ctx.Ref)
	cGI := ctx.Kernel.GradientInterfaceCov(ctx.Dips, ctx.Rest, ctx.Ref)
	uG, uI := driftMatrices(ctx, nU)
	fG, fI := faultMatrices(ctx, nG, nI, nF)

	c := mat.NewDense(size, size, nil)

	c.Slice(0, nG, 0, nG).(*mat.Dense).Copy(cG)
	c.Slice(0, nG, nG, nG+nI).(*mat.Dense).Copy(cGI.T())
	c.Slice(nG, nG+nI, 0, nG).(*mat.Dense).Copy(cGI)
	c.Slice(nG, nG+nI, nG, nG+nI).(*mat.Dense).Copy(cI)

	if nU > 0 {
		c.Slice(0, nG, nG+nI, nG+nI+nU).(*mat.Dense).Copy(uG)
		c.Slice(nG, nG+nI, nG+nI, nG+nI+nU).(*mat.Dense).Copy(uI)
		c.Slice(nG+nI, nG+nI+nU, 0, nG).(*mat.Dense).Copy(uG.T())
		c.Slice(nG+nI, nG+nI+nU, nG, nG+nI).(*mat.Dense).Copy(uI.T())
	}

	if nF > 0 {
		off := nG + nI + nU
		c.Slice(0, nG, off, size).(*mat.Dense).Copy(fG.T())
		c.Slice(nG, nG+nI, off, size).(*mat.Dense).Copy(fI.T())
		c.Slice(off, size, 0, nG).(*mat.Dense).Copy(fG)
		c.Slice(off, size, nG, nG+nI).(*mat.Dense).Copy(fI)
	}

	b := mat.NewVecDense(size, nil)
	g := geometry.DipVectors(ctx.DipAngles, ctx.Azimuth, ctx.Polarity)
	for i, v := range g {
		b.SetVec(i, v)
	}

	return c, b, nil
}

// driftMatrices builds the universal-drift blocks truncated to the series'
// drift degree: the gradient drift carries the derivatives of the
// polynomial terms per direction block, the interface drift carries the
// rest-minus-reference differences of the terms themselves.
func driftMatrices(ctx *SeriesContext, nU int) (uG, uI *mat.Dense) {
	if nU == 0 {
		return nil, nil
	}

	m := ctx.NumOrientations()
	r := ctx.NumInterfaceRows()
	gr := ctx.Kernel.GradientRescale

	full := mat.NewDense(3*m, 9, nil)
	for i := 0; i < m; i++ {
		p := ctx.Dips.RawRowView(i)
		// Linear terms: d/dx x = 1 and so on, per direction block.
		full.Set(i, 0, 1)
		full.Set(m+i, 1, 1)
		full.Set(2*m+i, 2, 1)
		// Quadratic terms.
		full.Set(i, 3, 2*gr*p[0])
		full.Set(m+i, 4, 2*gr*p[1])
		full.Set(2*m+i, 5, 2*gr*p[2])
		// Cross terms: d/dx xy = y, d/dy xy = x, ...
		full.Set(i, 6, gr*p[1])
		full.Set(m+i, 6, gr*p[0])
		full.Set(i, 7, gr*p[2])
		full.Set(2*m+i, 7, gr*p[0])
		full.Set(m+i, 8, gr*p[2])
		full.Set(2*m+i, 8, gr*p[1])
	}

	fullI := mat.NewDense(r, 9, nil)
	gr2 := gr * gr
	for j := 0; j < r; j++ {
		re := ctx.Rest.RawRowView(j)
		rf := ctx.Ref.RawRowView(j)
		fullI.Set(j, 0, -gr*(re[0]-rf[0]))
		fullI.Set(j, 1, -gr*(re[1]-rf[1]))
		fullI.Set(j, 2, -gr*(re[2]-rf[2]))
		fullI.Set(j, 3, -gr2*(re[0]*re[0]-rf[0]*rf[0]))
		fullI.Set(j, 4, -gr2*(re[1]*re[1]-rf[1]*rf[1]))
		fullI.Set(j, 5, -gr2*(re[2]*re[2]-rf[2]*rf[2]))
		fullI.Set(j, 6, -gr2*(re[0]*re[1]-rf[0]*rf[1]))
		fullI.Set(j, 7, -gr2*(re[0]*re[2]-rf[0]*rf[2]))
		fullI.Set(j, 8, -gr2*(re[1]*re[2]-rf[1]*rf[2]))
	}

	uG = full.Slice(0, 3*m, 0, nU).(*mat.Dense)
	uI = fullI.Slice(0, r, 0, nU).(*mat.Dense)
	return uG, uI
}

// faultMatrices builds the fault-drift blocks from the truncating faults'
// block values at the series' own points. The interface block is the
// reference-minus-rest difference; the gradient block is constant because
// the derivative of a discrete block is zero.
func faultMatrices(ctx *SeriesContext, nG, nI, nF int) (fG, fI *mat.Dense) {
	if nF == 0 {
		return nil, nil
	}

	fI = mat.NewDense(nF, nI, nil)
	for f := 0; f < nF; f++ {
		for j := 0; j < nI; j++ {
			fI.Set(f, j, ctx.FaultDriftAtRef.At(f, j)-ctx.FaultDriftAtRest.At(f, j)+faultDriftEpsilon)
		}
	}

	fG = mat.NewDense(nF, nG, nil)
	for f := 0; f < nF; f++ {
		for i := 0; i < nG; i++ {
			fG.Set(f, i, faultDriftEpsilon)
		}
	}
	return fG, fI
}
