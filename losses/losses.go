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

// Package losses implements masked, shape-flexible categorical cross-entropy on top of
// gomlx, which provides the automatic differentiation and the numerically stable
// softmax/log-softmax kernels.
//
// The package has two surfaces:
//
//   - MaskedSparseCrossEntropyLogits, a pure graph-building function that can be composed
//     into any gomlx graph;
//   - CrossEntropyLoss, a configured module (see New) that compiles and caches the
//     executable graph and evaluates it directly on tensors.
//
// Shape errors (labels not matching logits, mask not matching labels, class-weight length
// not matching the number of classes) are raised by the graph layer when the graph is
// built -- for CrossEntropyLoss that is the first Forward call -- and are not validated
// eagerly at configuration time.
package losses

import (
	. "github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gopjrt/dtypes"
)

// maskThreshold is the cut-off applied when coercing a numeric mask to boolean: values
// strictly greater than it select the position.
const maskThreshold = 0.5

// coerceMask converts a mask of any dtype to a boolean mask. Bool masks are returned
// unchanged; numeric masks select positions whose value is > 0.5 (so float masks of 0s
// and 1s, and integer masks of 0s and 1s, both behave as expected).
func coerceMask(mask *Node, dtype dtypes.DType) *Node {
	if mask.DType() == dtypes.Bool {
		return mask
	}
	asFloat := ConvertDType(mask, dtype)
	return GreaterThan(asFloat, Scalar(mask.Graph(), dtype, maskThreshold))
}

// MaskedSparseCrossEntropyLogits builds the graph computing the cross-entropy between
// logits and integer labels, restricted to the positions selected by mask, and reduced
// according to reduction.
//
//   - logits: float tensor of rank >= 2; the last axis holds one score per class, all
//     leading axes (batch, sequence, ...) are flattened together.
//   - labels: integer tensor shaped like logits minus the class axis, values in [0, C).
//   - mask: optional (nil to disable); bool or numeric tensor shaped like labels. See
//     coerceMask for the numeric coercion.
//   - classWeights: optional (nil to disable); float vector of length C rescaling each
//     class' contribution. ReductionMean normalizes by the sum of the selected positions'
//     class weights, matching the usual weighted cross-entropy definition.
//   - labelSmoothing: 0 to disable, otherwise in (0, 1): the one-hot targets are mixed
//     with the uniform distribution over classes.
//
// When the mask selects no position at all (or labels are empty), ReductionMean and
// ReductionSum return exactly 0 -- a finite, correctly shaped scalar -- rather than
// failing or producing NaN on an empty selection.
func MaskedSparseCrossEntropyLogits(logits, labels, mask, classWeights *Node,
	labelSmoothing float64, reduction Reduction) *Node {
	g := logits.Graph()
	dtype := logits.DType()
	if !dtype.IsFloat() {
		Panicf("logits must be a float tensor, got %s", logits.Shape())
	}
	if logits.Rank() < 2 {
		Panicf("logits must have rank >= 2 ([..., numClasses]), got %s", logits.Shape())
	}
	if !labels.DType().IsInt() {
		Panicf("labels must be an integer tensor, got %s", labels.Shape())
	}
	if labels.Rank() != logits.Rank()-1 {
		Panicf("labels (%s) must be shaped like logits (%s) minus the class axis",
			labels.Shape(), logits.Shape())
	}
	for axis, dim := range labels.Shape().Dimensions {
		if dim != logits.Shape().Dim(axis) {
			Panicf("labels (%s) must be shaped like logits (%s) minus the class axis",
				labels.Shape(), logits.Shape())
		}
	}
	if mask != nil && !sameDimensions(mask, labels) {
		Panicf("mask (%s) must be shaped like labels (%s)", mask.Shape(), labels.Shape())
	}

	numClasses := logits.Shape().Dim(-1)
	flatLogits := Reshape(logits, -1, numClasses)
	flatLabels := Reshape(labels, -1)

	logProbs := LogSoftmax(flatLogits, -1)
	targets := OneHot(flatLabels, numClasses, dtype)
	if labelSmoothing > 0 {
		targets = AddScalar(MulScalar(targets, 1.0-labelSmoothing), labelSmoothing/float64(numClasses))
	}
	losses := Neg(ReduceSum(Mul(targets, logProbs), -1)) // shape [N]

	// weights holds each position's contribution to the mean's normalizer.
	var weights *Node
	if classWeights != nil {
		if classWeights.Rank() != 1 {
			Panicf("classWeights must be a vector with one weight per class, got %s",
				classWeights.Shape())
		}
		if classWeights.Shape().Dim(0) != numClasses {
			Panicf("classWeights (%s) must have one weight per class, logits have %d classes",
				classWeights.Shape(), numClasses)
		}
		weights = Gather(ConvertDType(classWeights, dtype), InsertAxes(flatLabels, -1))
		losses = Mul(losses, weights)
	} else {
		weights = OnesLike(losses)
	}
	if mask != nil {
		flatMask := Reshape(coerceMask(mask, dtype), -1)
		losses = Where(flatMask, losses, ZerosLike(losses))
		weights = Where(flatMask, weights, ZerosLike(weights))
	}

	switch reduction {
	case ReductionSum:
		return ReduceAllSum(losses)
	case ReductionMean:
		numerator := ReduceAllSum(losses)
		denominator := ReduceAllSum(weights)
		zero := ScalarZero(g, dtype)
		selected := GreaterThan(denominator, zero)
		// The division must be guarded on both sides: Where evaluates both branches, and
		// 0/0 would poison gradients with NaN even when not selected.
		denominator = Where(selected, denominator, OnesLike(denominator))
		return Where(selected, Div(numerator, denominator), zero)
	case ReductionNone:
		return Reshape(losses, labels.Shape().Dimensions...)
	}
	Panicf("unknown reduction %s", reduction)
	return nil
}

// sameDimensions compares only the dimensions, the dtypes may differ.
func sameDimensions(a, b *Node) bool {
	if a.Rank() != b.Rank() {
		return false
	}
	for axis, dim := range a.Shape().Dimensions {
		if dim != b.Shape().Dim(axis) {
			return false
		}
	}
	return true
}
