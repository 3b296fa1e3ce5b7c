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

//go:generate enumer -type=Reduction -trimprefix=Reduction -transform=snake -values -text -json reduction.go

// Reduction selects how the per-position losses are combined into the value returned by
// the loss.
type Reduction int

const (
	// ReductionMean returns the weighted mean of the selected positions: the sum of the
	// (class-weighted) losses divided by the sum of the selected positions' class weights,
	// 1.0 per position when no class weights are configured. When no position is selected
	// the mean is defined as 0.
	ReductionMean Reduction = iota

	// ReductionSum returns the sum of the (class-weighted) losses of the selected positions.
	ReductionSum

	// ReductionNone returns one loss per position, shaped like the labels, with positions
	// masked out set to 0.
	ReductionNone
)
