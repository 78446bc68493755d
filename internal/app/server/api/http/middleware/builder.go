package middleware

import "github.com/danielgtaylor/huma/v2"

// Container accumulates per-route middlewares so the wiring code can
// stack a fresh chain for each handler group.
type Container struct {
	middlewares huma.Middlewares
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Add(mw func(huma.Context, func(huma.Context))) {
	c.middlewares = append(c.middlewares, mw)
}

// GetAllAndClear hands out the accumulated chain and resets the
// container for the next handler group.
func (c *Container) GetAllAndClear() huma.Middlewares {
	mws := c.middlewares
	c.middlewares = nil
	return mws
}
