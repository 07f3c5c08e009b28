package amount

// Calc chains arithmetic and keeps the first error. Once an operation
// failed every following one returns its first operand unchanged, so a
// sequence of computations is checked with a single call to Err.
type Calc struct {
	err error
}

// Err returns the first error met, if any.
func (c *Calc) Err() error {
	return c.err
}

func (c *Calc) do(a Amount, op func() (Amount, error)) Amount {
	if c.err != nil {
		return a
	}
	res, err := op()
	if err != nil {
		c.err = err
		return a
	}
	return res
}

func (c *Calc) Add(a, b Amount) Amount {
	return c.do(a, func() (Amount, error) { return a.Add(b) })
}

func (c *Calc) Sub(a, b Amount) Amount {
	return c.do(a, func() (Amount, error) { return a.Sub(b) })
}

func (c *Calc) Mul(a, b Amount) Amount {
	return c.do(a, func() (Amount, error) { return a.Mul(b) })
}

func (c *Calc) Quo(a, b Amount) Amount {
	return c.do(a, func() (Amount, error) { return a.Quo(b) })
}

func (c *Calc) MulQuo(a, b, d Amount) Amount {
	return c.do(a, func() (Amount, error) { return a.MulQuo(b, d) })
}

// SubFloor returns max(a - b, 0).
func (c *Calc) SubFloor(a, b Amount) Amount {
	return Max(c.Sub(a, b), Zero())
}
