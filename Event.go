/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package structure

import (
	"fmt"
	"time"
)

const (
	EvtBuildStart      = 0 // Wavelet tree construction starts
	EvtLayerStart      = 1 // A layer's streaming pass starts
	EvtFragmentDone    = 2 // A single fragment within a layer has been written
	EvtLayerEnd        = 3 // A layer's streaming pass ends
	EvtIndexBuildStart = 4 // Rank/select index construction starts
	EvtIndexBuildEnd   = 5 // Rank/select index construction ends
	EvtBuildEnd        = 6 // Wavelet tree construction ends
)

// BuildEvent reports progress during wavelet tree construction. Layer is
// only meaningful for the EvtLayer*/EvtFragmentDone event types and
// Fragment only for EvtFragmentDone; they are -1 otherwise.
type BuildEvent struct {
	eventType int
	layer     int
	fragment  int
	eventTime time.Time
}

// NewBuildEvent creates a BuildEvent. A zero eventTime is replaced with the
// current time.
func NewBuildEvent(evtType, layer, fragment int, evtTime time.Time) BuildEvent {
	if evtTime.IsZero() {
		evtTime = time.Now()
	}

	return BuildEvent{eventType: evtType, layer: layer, fragment: fragment, eventTime: evtTime}
}

// Type returns the event type (one of the Evt* constants).
func (this BuildEvent) Type() int {
	return this.eventType
}

// Layer returns the 0-indexed layer this event pertains to, or -1.
func (this BuildEvent) Layer() int {
	return this.layer
}

// Fragment returns the 0-indexed fragment within the layer this event
// pertains to, or -1.
func (this BuildEvent) Fragment() int {
	return this.fragment
}

// Time returns the time the event was created.
func (this BuildEvent) Time() time.Time {
	return this.eventTime
}

// String returns a human-readable representation of the event.
func (this BuildEvent) String() string {
	t := ""

	switch this.eventType {
	case EvtBuildStart:
		t = "BUILD_START"
	case EvtLayerStart:
		t = "LAYER_START"
	case EvtFragmentDone:
		t = "FRAGMENT_DONE"
	case EvtLayerEnd:
		t = "LAYER_END"
	case EvtIndexBuildStart:
		t = "INDEX_BUILD_START"
	case EvtIndexBuildEnd:
		t = "INDEX_BUILD_END"
	case EvtBuildEnd:
		t = "BUILD_END"
	}

	return fmt.Sprintf("{ \"type\":\"%s\", \"layer\":%d, \"fragment\":%d, \"time\":%d }",
		t, this.layer, this.fragment, this.eventTime.UnixNano()/1000000)
}

// BuildListener is implemented by callers that want visibility into a long
// running wavelet tree construction. A nil BuildListener is valid anywhere
// one is accepted and disables reporting.
type BuildListener interface {
	ProcessEvent(evt BuildEvent)
}

// Notify is a nil-safe helper so construction code never needs its own nil
// check before reporting progress.
func Notify(l BuildListener, evt BuildEvent) {
	if l != nil {
		l.ProcessEvent(evt)
	}
}
