// Package loader provides the feature loading system.
//
// Each feature implements the Feature interface, which names it, says whether it is
// enabled and registers its routes.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager holds the registry of features. Register adds one; LoadAll loads the
// enabled ones in registration order. The products and notfound features are both
// loaded this way by the start command.
package loader
