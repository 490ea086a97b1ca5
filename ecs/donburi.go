// Package ecs provides ECS adapters for thicket.
package ecs

import (
	"github.com/phanxgames/thicket"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ResolveEventType is the Donburi event type for thicket resolution events.
// Subscribe to this in your ECS systems to learn when a node's resolved
// visibility or enable flips.
var ResolveEventType = events.NewEventType[thicket.ResolveEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Resolution events are published to ResolveEventType and can be consumed
// with Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) thicket.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event thicket.ResolveEvent) {
	ResolveEventType.Publish(s.world, event)
}
