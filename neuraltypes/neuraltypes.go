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

// Package neuraltypes declares the semantic types of the tensors flowing in and out of
// neural modules: what each axis means and what kind of quantity the tensor holds
// (logits, labels, a mask, a loss).
//
// The declarations are plain data. Modules expose them through InputPorts/OutputPorts
// so that composition tooling can inspect expected shapes, and NeuralType.Check lets a
// caller validate a concrete tensor shape against a declaration before execution.
//
// This package is experimental: the port vocabulary is expected to grow and its API may
// still change in incompatible ways.
package neuraltypes

import (
	"strings"

	"github.com/gomlx/gomlx/types/shapes"
	"github.com/pkg/errors"
)

//go:generate enumer -type=Kind -trimprefix=Kind -transform=snake -values -text -json neuraltypes.go

// Kind is the semantic kind of the values held by a tensor.
type Kind int

const (
	// KindLogits are unnormalized log-probabilities, one score per class on the last axis.
	KindLogits Kind = iota

	// KindLabels are integer class indices.
	KindLabels

	// KindMask selects which positions of a batch participate in an operation.
	// Bool tensors are used as is; numeric tensors are true where the value is > 0.5.
	KindMask

	// KindLoss is a loss value: a scalar after reduction, or one value per position.
	KindLoss
)

// Axis describes one axis of a declared tensor type by name.
// Two axes are well known: Batch and Any.
type Axis struct {
	Name string
}

var (
	// Batch is the leading batch axis.
	Batch = Axis{Name: "B"}

	// Any is an axis of unconstrained size: sequence length, spatial dimensions, etc.
	Any = Axis{Name: "ANY"}
)

// NeuralType declares the expected rank, axes semantics and value kind of a tensor.
type NeuralType struct {
	Axes     []Axis
	Kind     Kind
	Optional bool
}

// BatchedAny returns a NeuralType of the given kind whose axes are a leading Batch axis
// followed by extraAxes unconstrained axes.
func BatchedAny(kind Kind, extraAxes int) NeuralType {
	axes := make([]Axis, 1, 1+extraAxes)
	axes[0] = Batch
	for ii := 0; ii < extraAxes; ii++ {
		axes = append(axes, Any)
	}
	return NeuralType{Axes: axes, Kind: kind}
}

// Scalar returns a NeuralType with no axes, used for reduced outputs.
func Scalar(kind Kind) NeuralType {
	return NeuralType{Kind: kind}
}

// AsOptional returns a copy of the NeuralType marked optional.
func (t NeuralType) AsOptional() NeuralType {
	t.Optional = true
	return t
}

// Rank of the declared type.
func (t NeuralType) Rank() int { return len(t.Axes) }

// String lists the axes and kind, e.g. "[B, ANY]labels".
func (t NeuralType) String() string {
	var b strings.Builder
	b.WriteRune('[')
	for ii, axis := range t.Axes {
		if ii > 0 {
			b.WriteString(", ")
		}
		b.WriteString(axis.Name)
	}
	b.WriteRune(']')
	b.WriteString(t.Kind.String())
	if t.Optional {
		b.WriteRune('?')
	}
	return b.String()
}

// Check validates a concrete tensor shape against the declared type: the rank must match
// the number of declared axes, and the dtype must be compatible with the declared Kind --
// float for logits and losses, an integer type for labels, bool or numeric for masks.
//
// Scalar declarations (no axes) only check the dtype, since reductions may legitimately
// produce either a scalar or a per-position tensor (see KindLoss).
func (t NeuralType) Check(shape shapes.Shape) error {
	if len(t.Axes) > 0 && shape.Rank() != t.Rank() {
		return errors.Errorf("%s expects rank %d, got shape %s", t, t.Rank(), shape)
	}
	dtype := shape.DType
	switch t.Kind {
	case KindLogits, KindLoss:
		if !dtype.IsFloat() {
			return errors.Errorf("%s expects a float dtype, got shape %s", t, shape)
		}
	case KindLabels:
		if !dtype.IsInt() {
			return errors.Errorf("%s expects an integer dtype, got shape %s", t, shape)
		}
	case KindMask:
		if dtype.IsComplex() {
			return errors.Errorf("%s expects bool or real numeric dtype, got shape %s", t, shape)
		}
	}
	return nil
}

// Port is a named NeuralType: one input or output of a neural module.
type Port struct {
	Name string
	Type NeuralType
}

// Ports is an ordered list of ports. Order matters: it mirrors the positional call
// convention of the owning module.
type Ports []Port

// Get returns the port with the given name, or false if not declared.
func (p Ports) Get(name string) (Port, bool) {
	for _, port := range p {
		if port.Name == name {
			return port, true
		}
	}
	return Port{}, false
}

// Check validates the given shape against the named port. An unknown port name is an
// error; a nil shape (shapes.Shape{}, rank 0 and invalid dtype) is accepted only for
// optional ports.
func (p Ports) Check(name string, shape shapes.Shape, provided bool) error {
	port, found := p.Get(name)
	if !found {
		return errors.Errorf("port %q is not declared (have %v)", name, p)
	}
	if !provided {
		if port.Type.Optional {
			return nil
		}
		return errors.Errorf("port %q (%s) is required", name, port.Type)
	}
	if err := port.Type.Check(shape); err != nil {
		return errors.WithMessagef(err, "port %q", name)
	}
	return nil
}

func (p Ports) String() string {
	parts := make([]string, 0, len(p))
	for _, port := range p {
		parts = append(parts, port.Name+":"+port.Type.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
