// Package ecs provides ECS adapters for thicket's resolution events.
//
// The primary adapter is [NewDonburiStore], which bridges resolved
// visibility and enable changes into a [Donburi] world as typed events.
// Subscribe to [ResolveEventType] in your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//	scene.SetEntityID(node, entityID)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
