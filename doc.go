// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package gnomics is the overall repository for the gnomics sparse
distributed representation (SDR) dataflow engine, written in Go.

This top level of the repository has no functional code -- everything is
organized into the following sub-packages:

* bitfield defines BitField, the fixed-length word-packed mutable bit
vector every other package builds on, plus a monotonic version counter
used to detect stale reads.

* block defines the Block lifecycle interface (init/step/pull/encode/
store/learn/feedforward) shared by every statelet-producing component,
and the Base struct embedded by each concrete block kind.

block also houses Output (a block's current state plus a ring of T
prior states) and Input (the word-aligned lazy concatenation of one or
more Outputs at a declared time offset into a single destination
BitField).

* memory implements BlockMemory: the dendrite-by-receptor synaptic
array of (address, permanence) pairs shared by every learning block,
with Hebbian learn/punish, full and pooled initialization, and a
weights snapshot/restore surface separate from a network's
topology/params export.

* erand provides the per-block-instance deterministic random source
used throughout gnomics -- narrower than a general-purpose RNG package,
since every stateful block owns its own stream seeded once at
construction rather than drawing from shared/global state.

* transform implements the pure encoder block kinds (ScalarTransformer,
DiscreteTransformer, PersistenceTransformer) that turn an external value
into an SDR with no learning step.

* pooler and classifier implement the spatial learner block kinds
(PatternPooler, PatternClassifier): winner-take-all competition over
BlockMemory overlap scores, with Hebbian reinforcement of the winners.

* temporal implements the columnar HTM-style temporal learner block
kinds (ContextLearner, SequenceLearner): per-column statelets predicting
via dendrite-overlap thresholding against a context input, bursting on
surprise, and growing new dendrites to represent novel contexts.

* network implements Network, the type-erased block container and
deterministic topological scheduler, plus JSON/binary config export and
import, learned-weights export and import, a block-trace recorder, and
per-cycle timing instrumentation.
*/
package gnomics
