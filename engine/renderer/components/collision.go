package components

// Collider is a pluggable intersection test attached to a RenderableObject.
//
// CheckCollision receives the object it is attached to, the peer's collider
// and the peer itself, so it can read transform and geometry from both sides.
// ok is false when the strategy cannot decide; hit is only meaningful when ok
// is true.
type Collider interface {
	CheckCollision(self *RenderableObject, peerState Collider, peer *RenderableObject) (hit bool, ok bool)
}

// ColliderFunc adapts a plain function to the Collider interface.
type ColliderFunc func(self *RenderableObject, peerState Collider, peer *RenderableObject) (bool, bool)

func (f ColliderFunc) CheckCollision(self *RenderableObject, peerState Collider, peer *RenderableObject) (bool, bool) {
	return f(self, peerState, peer)
}
