// Package observe provides a reactive observation host for route
// controllers.
//
// A Registry decides which values it tracks, keeps a root count per
// tracked value and publishes rooting changes to subscribers. Changes made
// inside Batch are coalesced and published once, when the outermost batch
// completes:
//
//	reg := observe.NewRegistry()
//	reg.Subscribe(func(changes []observe.Change) {
//	    for _, c := range changes {
//	        log.Printf("%T rooted=%v", c.Value, c.Rooted)
//	    }
//	})
//	r, _ := router.New(routes, router.WithHost(reg))
//
// Values are tracked when they implement Observable or were marked with
// Track. Only comparable values can be tracked.
package observe
