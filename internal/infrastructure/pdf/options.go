package pdf

type Option func(c *Compositor)

// DateLayout sets the time layout of the "Report Date" field.
func DateLayout(layout string) Option {
	return func(c *Compositor) {
		c.dateLayout = layout
	}
}

func Creator(name string) Option {
	return func(c *Compositor) {
		c.creator = name
	}
}
