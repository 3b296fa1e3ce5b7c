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

// Package metrics provides mask-aware evaluation metrics matching the conventions of the
// losses package: an optional extra labels tensor is a mask selecting which positions
// (e.g. non-padding tokens) count.
package metrics

import (
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/train/metrics"
	"github.com/gomlx/gopjrt/dtypes"
)

// MaskedSparseCategoricalAccuracyGraph computes the fraction of positions whose argmax
// class matches the integer label, over the positions selected by the optional mask
// (labels[1], bool, shaped like labels[0]). Without a mask every position counts.
//
// It follows the metrics.BaseMetricGraph signature; ctx is unused.
func MaskedSparseCategoricalAccuracyGraph(ctx *context.Context, labels, predictions []*Node) *Node {
	logits := predictions[0]
	truth := labels[0]
	g := logits.Graph()
	dtype := logits.DType()

	choices := ArgMax(logits, -1, truth.DType())
	correct := ConvertDType(Equal(choices, truth), dtype)

	if len(labels) < 2 {
		return ReduceAllMean(correct)
	}
	mask := labels[1]
	if mask.DType() != dtypes.Bool {
		mask = GreaterThan(ConvertDType(mask, dtype), Scalar(g, dtype, 0.5))
	}
	correct = Where(mask, correct, ZerosLike(correct))
	count := ReduceAllSum(ConvertDType(mask, dtype))
	zero := ScalarZero(g, dtype)
	selected := GreaterThan(count, zero)
	count = Where(selected, count, OnesLike(count))
	return Where(selected, Div(ReduceAllSum(correct), count), zero)
}

// NewMeanMaskedSparseCategoricalAccuracy returns a metric accumulating the mean masked
// accuracy over an evaluation, pluggable into gomlx's train.Trainer.
func NewMeanMaskedSparseCategoricalAccuracy(name, shortName string) metrics.Interface {
	return metrics.NewMeanMetric(name, shortName, metrics.AccuracyMetricType,
		MaskedSparseCategoricalAccuracyGraph, nil)
}
