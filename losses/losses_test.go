/*
 *	Copyright 2025 The NeMo-Go Authors
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package losses

import (
	"math"
	"testing"

	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/graph/graphtest"
	"github.com/stretchr/testify/require"

	_ "github.com/gomlx/gomlx/backends/default"
)

func TestMaskedSparseCrossEntropyLogitsGraph(t *testing.T) {
	graphtest.RunTestGraphFn(t, "mean over two uniform rows",
		func(g *Graph) (inputs, outputs []*Node) {
			logits := Const(g, [][]float32{{0, 0}, {0, 0}})
			labels := Const(g, []int64{0, 1})
			loss := MaskedSparseCrossEntropyLogits(logits, labels, nil, nil, 0, ReductionMean)
			return []*Node{logits}, []*Node{loss}
		}, []any{float32(math.Ln2)}, 1e-4)

	graphtest.RunTestGraphFn(t, "sum with mask and class weights",
		func(g *Graph) (inputs, outputs []*Node) {
			logits := Const(g, [][]float32{{0, 0}, {0, 0}, {0, 0}})
			labels := Const(g, []int64{0, 1, 1})
			mask := Const(g, []bool{true, true, false})
			weights := Const(g, []float64{1, 2})
			loss := MaskedSparseCrossEntropyLogits(logits, labels, mask, weights, 0, ReductionSum)
			return []*Node{logits}, []*Node{loss}
		}, []any{float32(3 * math.Ln2)}, 1e-4)

	graphtest.RunTestGraphFn(t, "all-false mask is exactly zero",
		func(g *Graph) (inputs, outputs []*Node) {
			logits := Const(g, [][]float32{{2, 0}, {0, 2}})
			labels := Const(g, []int64{0, 1})
			mask := Const(g, []bool{false, false})
			loss := MaskedSparseCrossEntropyLogits(logits, labels, mask, nil, 0, ReductionMean)
			return []*Node{logits}, []*Node{loss}
		}, []any{float32(0)}, 0)

	graphtest.RunTestGraphFn(t, "none keeps the labels shape",
		func(g *Graph) (inputs, outputs []*Node) {
			logits := Const(g, [][][]float32{{{0, 0}, {0, 0}}})
			labels := Const(g, [][]int64{{0, 1}})
			loss := MaskedSparseCrossEntropyLogits(logits, labels, nil, nil, 0, ReductionNone)
			return []*Node{logits}, []*Node{loss}
		}, []any{[][]float32{{math.Ln2, math.Ln2}}}, 1e-4)
}

func TestGradientThroughLoss(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	exec := NewExec(backend, func(g *Graph) []*Node {
		logits := Const(g, [][]float32{{0, 0}, {1, 0}})
		labels := Const(g, []int64{0, 0})
		mask := Const(g, []bool{true, false})
		loss := MaskedSparseCrossEntropyLogits(logits, labels, mask, nil, 0, ReductionMean)
		grads := Gradient(loss, logits)
		return []*Node{loss, grads[0]}
	})
	outputs := exec.Call()

	// Only the first row is selected: d(loss)/d(logits) = softmax - onehot there, and
	// exactly zero on the masked-out row.
	rows := outputs[1].Value().([][]float32)
	require.InDeltaSlice(t, []float32{-0.5, 0.5}, rows[0], 1e-4)
	require.InDeltaSlice(t, []float32{0, 0}, rows[1], 1e-4)
}

func TestInvalidShapesPanic(t *testing.T) {
	backend := graphtest.BuildTestBackend()
	buildWith := func(fn func(g *Graph) *Node) func() {
		return func() {
			exec := NewExec(backend, func(g *Graph) []*Node { return []*Node{fn(g)} })
			exec.Call()
		}
	}

	require.Panics(t, buildWith(func(g *Graph) *Node {
		// Rank-1 logits.
		return MaskedSparseCrossEntropyLogits(
			Const(g, []float32{0, 0}), Const(g, []int64{0}), nil, nil, 0, ReductionMean)
	}))
	require.Panics(t, buildWith(func(g *Graph) *Node {
		// Float labels.
		return MaskedSparseCrossEntropyLogits(
			Const(g, [][]float32{{0, 0}}), Const(g, []float32{0}), nil, nil, 0, ReductionMean)
	}))
	require.Panics(t, buildWith(func(g *Graph) *Node {
		// Mask shaped differently from labels.
		return MaskedSparseCrossEntropyLogits(
			Const(g, [][]float32{{0, 0}}), Const(g, []int64{0}),
			Const(g, []bool{true, false}), nil, 0, ReductionMean)
	}))
}
