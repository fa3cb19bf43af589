package router

// FallbackRoute returns a "*" route that redirects to another path when it
// is entered.
func FallbackRoute(to string) RouteDef {
	return RouteDef{
		Path:       fallbackSegment,
		Component:  func(Props) any { return nil },
		Controller: Static(redirect{to: to}),
	}
}

type redirect struct {
	to string
}

func (c redirect) OnEnter(ctx HookContext) Result {
	if err := ctx.Router.TransitionTo(c.to); err != nil {
		return Failed(err)
	}
	return Allow()
}
