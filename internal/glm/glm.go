// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package glm fits the logistic regression of dibasic cleavage-site
// presence in inter-domain linkers on linker length and lineage.
package glm

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pdiddy/pacifastin-atlas/pkg/types"
)

// dibasicMotifs are the canonical proprotein convertase cleavage motifs.
var dibasicMotifs = []string{"KR", "RR", "RK", "KK"}

const (
	defaultMaxIterations = 25
	defaultTolerance     = 1e-8

	// minWeight floors the IRLS working weights so fitted probabilities
	// near 0 or 1 do not produce a singular system.
	minWeight = 1e-10
)

// HasCleavageSite reports whether the linker contains any canonical
// dibasic motif.
func HasCleavageSite(seq string) bool {
	for _, motif := range dibasicMotifs {
		if strings.Contains(seq, motif) {
			return true
		}
	}
	return false
}

// Coefficient is one fitted model term.
type Coefficient struct {
	Name     string
	Estimate float64
	StdErr   float64
	Z        float64
	P        float64

	// OddsRatio is exp(Estimate); Lower and Upper bound its 95% CI.
	OddsRatio float64
	ORLower   float64
	ORUpper   float64
}

// Model is a fitted binomial GLM with logit link.
type Model struct {
	Coefficients []Coefficient
	Iterations   int
	Observations int
}

// Fit runs iteratively reweighted least squares on the model
// Has_Cleavage ~ Length + Lineage, with Compact-loop as the reference
// level. It fails when the fit does not converge within the iteration cap
// or the information matrix is singular.
func Fit(records []types.LinkerRecord, cfg types.GLMConfig) (*Model, error) {
	n := len(records)
	if n == 0 {
		return nil, fmt.Errorf("no linker records to fit")
	}

	const p = 3
	names := []string{"Intercept", "Length", "Lineage_Extended"}

	X := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, r := range records {
		X.Set(i, 0, 1)
		X.Set(i, 1, float64(len(r.LinkerSeq)))
		if r.Lineage == types.LineageExtended {
			X.Set(i, 2, 1)
		}
		if HasCleavageSite(r.LinkerSeq) {
			y.SetVec(i, 1)
		}
	}

	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	tol := cfg.Tolerance
	if tol <= 0 {
		tol = defaultTolerance
	}

	beta := mat.NewVecDense(p, nil)
	var cov mat.Dense
	converged := false
	iterations := 0

	for iter := 1; iter <= maxIter; iter++ {
		iterations = iter

		// Working weights and response for the current linear predictor.
		var eta mat.VecDense
		eta.MulVec(X, beta)

		weights := make([]float64, n)
		z := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			mu := 1 / (1 + math.Exp(-eta.AtVec(i)))
			w := mu * (1 - mu)
			if w < minWeight {
				w = minWeight
			}
			weights[i] = w
			z.SetVec(i, eta.AtVec(i)+(y.AtVec(i)-mu)/w)
		}

		// Weighted normal equations: (X'WX) beta = X'Wz.
		W := mat.NewDiagDense(n, weights)
		var xtw, xtwx mat.Dense
		xtw.Mul(X.T(), W)
		xtwx.Mul(&xtw, X)

		if err := cov.Inverse(&xtwx); err != nil {
			return nil, fmt.Errorf("information matrix is singular at iteration %d: %w", iter, err)
		}

		var xtwz, next mat.VecDense
		xtwz.MulVec(&xtw, z)
		next.MulVec(&cov, &xtwz)

		maxDelta := 0.0
		for j := 0; j < p; j++ {
			if d := math.Abs(next.AtVec(j) - beta.AtVec(j)); d > maxDelta {
				maxDelta = d
			}
		}
		beta.CopyVec(&next)
		if maxDelta < tol {
			converged = true
			break
		}
	}
	if !converged {
		return nil, fmt.Errorf("IRLS did not converge after %d iterations", maxIter)
	}

	// Standard errors from the observed information matrix; Wald tests and
	// odds ratios with 95% CIs.
	critical := distuv.UnitNormal.Quantile(0.975)
	model := &Model{Iterations: iterations, Observations: n}
	for j := 0; j < p; j++ {
		est := beta.AtVec(j)
		se := math.Sqrt(cov.At(j, j))
		zScore := est / se
		c := Coefficient{
			Name:      names[j],
			Estimate:  est,
			StdErr:    se,
			Z:         zScore,
			P:         2 * distuv.UnitNormal.Survival(math.Abs(zScore)),
			OddsRatio: math.Exp(est),
			ORLower:   math.Exp(est - critical*se),
			ORUpper:   math.Exp(est + critical*se),
		}
		model.Coefficients = append(model.Coefficients, c)
	}
	return model, nil
}

// ReadLinkersCSV reads the validated linker file with columns Sequence_ID,
// Linker_Seq, Lineage, Phylum.
func ReadLinkersCSV(path string) ([]types.LinkerRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening linker CSV %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: no linker rows", path)
	}

	var out []types.LinkerRecord
	for i, row := range rows[1:] {
		if len(row) != 4 {
			return nil, fmt.Errorf("%s row %d: expected 4 columns, got %d", path, i+2, len(row))
		}
		out = append(out, types.LinkerRecord{
			SequenceID: row[0],
			LinkerSeq:  row[1],
			Lineage:    types.Lineage(row[2]),
			Phylum:     row[3],
		})
	}
	return out, nil
}

// WriteCoefficientsCSV writes the fitted coefficient table.
func WriteCoefficientsCSV(path string, model *Model) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating coefficient CSV %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{"Term", "Estimate", "Std_Error", "Z", "P_Value", "Odds_Ratio", "OR_Lower_95", "OR_Upper_95"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, c := range model.Coefficients {
		row := []string{
			c.Name,
			formatFloat(c.Estimate),
			formatFloat(c.StdErr),
			formatFloat(c.Z),
			formatFloat(c.P),
			formatFloat(c.OddsRatio),
			formatFloat(c.ORLower),
			formatFloat(c.ORUpper),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", c.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
