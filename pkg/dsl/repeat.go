package dsl

// zeroOrMore applies item until the lookahead is the stop kind or item fails,
// and returns the number of items that succeeded.
//
// Each attempt saves the cursor first. On failure only the cursor is rolled
// back: the lookahead register keeps the token the item failed on, and any
// diagnostic the item latched stays latched. The caller then continues as if
// the list had ended normally.
func (p *Parser) zeroOrMore(stop Kind, item func() bool) int {
	n := 0
	for p.cur.Kind != stop {
		saved := p.pos
		if !item() {
			p.pos = saved
			break
		}
		p.advance()
		n++
	}
	return n
}
