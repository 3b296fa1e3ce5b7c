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
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/pkg/errors"

	"github.com/cparisien/NeMo/neuraltypes"
)

// CrossEntropyLossConfig configures a CrossEntropyLoss. Create it with New, set the
// options and call Done.
type CrossEntropyLossConfig struct {
	backend        backends.Backend
	logitsRank     int
	reduction      Reduction
	labelSmoothing float64
	classWeights   []float64
}

// New creates the configuration for a CrossEntropyLoss module computing on the given
// backend -- the backend selects the compute device the module (and its class-weights
// constant) will live on.
//
// The defaults are logits of rank 2 ([batchSize, numClasses]), no class weights, no label
// smoothing and ReductionMean. Call Done when finished configuring.
func New(backend backends.Backend) *CrossEntropyLossConfig {
	return &CrossEntropyLossConfig{
		backend:    backend,
		logitsRank: 2,
		reduction:  ReductionMean,
	}
}

// LogitsRank sets the rank of the logits tensors the module will accept, including the
// batch and the class axes -- e.g. 3 for sequence models taking [batch, time, classes].
// It defaults to 2 and must be at least 2.
func (c *CrossEntropyLossConfig) LogitsRank(rank int) *CrossEntropyLossConfig {
	c.logitsRank = rank
	return c
}

// ClassWeights sets one rescaling weight per class. The length must match the number of
// classes of the logits, but that is only verified when the first loss is computed.
// An empty (or nil) slice disables class weighting.
func (c *CrossEntropyLossConfig) ClassWeights(weights []float64) *CrossEntropyLossConfig {
	c.classWeights = weights
	return c
}

// WithReduction sets how the per-position losses are reduced. It defaults to
// ReductionMean.
func (c *CrossEntropyLossConfig) WithReduction(reduction Reduction) *CrossEntropyLossConfig {
	c.reduction = reduction
	return c
}

// LabelSmoothing mixes the one-hot targets with the uniform distribution over classes:
// 0 (the default) disables it, and amount must be < 1.
func (c *CrossEntropyLossConfig) LabelSmoothing(amount float64) *CrossEntropyLossConfig {
	c.labelSmoothing = amount
	return c
}

// Done validates the configuration and builds the CrossEntropyLoss module.
//
// Only the configuration itself is validated here; shape relationships between inputs and
// the class-weights length are checked when the computation graph is first built, on the
// first Forward call.
func (c *CrossEntropyLossConfig) Done() (*CrossEntropyLoss, error) {
	if c.backend == nil {
		return nil, errors.New("CrossEntropyLoss requires a non-nil backend, see losses.New")
	}
	if c.logitsRank < 2 {
		return nil, errors.Errorf("CrossEntropyLoss requires logits rank >= 2, got %d", c.logitsRank)
	}
	if !c.reduction.IsAReduction() {
		return nil, errors.Errorf("CrossEntropyLoss got unknown reduction %d", c.reduction)
	}
	if c.labelSmoothing < 0 || c.labelSmoothing >= 1 {
		return nil, errors.Errorf("CrossEntropyLoss requires label smoothing in [0, 1), got %g",
			c.labelSmoothing)
	}
	l := &CrossEntropyLoss{
		backend:        c.backend,
		logitsRank:     c.logitsRank,
		reduction:      c.reduction,
		labelSmoothing: c.labelSmoothing,
	}
	if len(c.classWeights) > 0 {
		l.classWeights = tensors.FromValue(c.classWeights)
	}
	l.inputPorts = neuraltypes.Ports{
		{Name: "logits", Type: neuraltypes.BatchedAny(neuraltypes.KindLogits, l.logitsRank-1)},
		{Name: "labels", Type: neuraltypes.BatchedAny(neuraltypes.KindLabels, l.logitsRank-2)},
		{Name: "loss_mask", Type: neuraltypes.BatchedAny(neuraltypes.KindMask, l.logitsRank-2).AsOptional()},
	}
	l.outputPorts = neuraltypes.Ports{
		{Name: "loss", Type: neuraltypes.Scalar(neuraltypes.KindLoss)},
	}
	l.exec = NewExec(c.backend, func(logits, labels *Node) *Node {
		return l.LossGraph(logits, labels, nil)
	})
	l.execMasked = NewExec(c.backend, func(logits, labels, mask *Node) *Node {
		return l.LossGraph(logits, labels, mask)
	})
	return l, nil
}

// CrossEntropyLoss computes masked categorical cross-entropy between logits and integer
// labels, on a fixed backend and with a fixed configuration (logits rank, class weights,
// label smoothing, reduction).
//
// The module holds no per-call state: after construction it is read-only, and concurrent
// Forward calls are safe.
type CrossEntropyLoss struct {
	backend        backends.Backend
	logitsRank     int
	reduction      Reduction
	labelSmoothing float64
	classWeights   *tensors.Tensor // nil when class weighting is disabled

	inputPorts, outputPorts neuraltypes.Ports

	exec       *Exec // (logits, labels)
	execMasked *Exec // (logits, labels, lossMask)
}

// InputPorts declares the module's inputs: "logits" (float, rank = configured logits
// rank), "labels" (integer, one rank lower) and the optional "loss_mask" (shaped like
// labels). The returned slice is shared, callers must not modify it.
func (l *CrossEntropyLoss) InputPorts() neuraltypes.Ports { return l.inputPorts }

// OutputPorts declares the module's single output: "loss". It is a scalar for
// ReductionMean and ReductionSum, and is shaped like the labels for ReductionNone.
func (l *CrossEntropyLoss) OutputPorts() neuraltypes.Ports { return l.outputPorts }

// checkInputs validates the declared input contract before execution, mirroring what a
// composition framework would do from InputPorts.
func (l *CrossEntropyLoss) checkInputs(logits, labels, lossMask *tensors.Tensor) error {
	if logits == nil || labels == nil {
		return errors.New("logits and labels must both be non-nil")
	}
	if err := l.inputPorts.Check("logits", logits.Shape(), true); err != nil {
		return err
	}
	if err := l.inputPorts.Check("labels", labels.Shape(), true); err != nil {
		return err
	}
	if lossMask == nil {
		return l.inputPorts.Check("loss_mask", shapes.Shape{}, false)
	}
	return l.inputPorts.Check("loss_mask", lossMask.Shape(), true)
}

// Forward computes the loss for one batch. lossMask may be nil, in which case every
// position contributes.
//
// The first call with a given set of input shapes compiles the graph, so shape problems
// (including a class-weights length that doesn't match the number of classes) surface
// here as errors, not at configuration time. Subsequent calls with the same shapes reuse
// the compiled executable.
func (l *CrossEntropyLoss) Forward(logits, labels, lossMask *tensors.Tensor) (*tensors.Tensor, error) {
	if err := l.checkInputs(logits, labels, lossMask); err != nil {
		return nil, errors.WithMessage(err, "CrossEntropyLoss.Forward inputs")
	}
	var outputs []*tensors.Tensor
	var err error
	if lossMask == nil {
		err = exceptions.TryCatch[error](func() { outputs = l.exec.Call(logits, labels) })
	} else {
		err = exceptions.TryCatch[error](func() { outputs = l.execMasked.Call(logits, labels, lossMask) })
	}
	if err != nil {
		return nil, errors.WithMessage(err, "CrossEntropyLoss.Forward")
	}
	return outputs[0], nil
}

// LossGraph builds the loss computation as part of the given graph, for composition into
// larger models. lossMask may be nil.
//
// It panics (gomlx graph conventions) on invalid shapes; use Forward for an error-based
// API on concrete tensors.
func (l *CrossEntropyLoss) LossGraph(logits, labels, lossMask *Node) *Node {
	var classWeights *Node
	if l.classWeights != nil {
		classWeights = ConstCachedTensor(logits.Graph(), l.classWeights)
	}
	return MaskedSparseCrossEntropyLogits(logits, labels, lossMask, classWeights,
		l.labelSmoothing, l.reduction)
}

// LossFnForTrainer adapts the module to the loss-function convention of gomlx's
// train.Trainer: labels[0] are the labels and an optional labels[1] is the loss mask,
// predictions[0] are the logits.
func (l *CrossEntropyLoss) LossFnForTrainer(labels, predictions []*Node) *Node {
	var mask *Node
	if len(labels) > 1 {
		mask = labels[1]
	}
	return l.LossGraph(predictions[0], labels[0], mask)
}
