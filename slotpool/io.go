package slotpool

import "io"

// WriteTo serializes the occupancy bits. The snapshot is consistent
// only absent concurrent Allocate or Release calls. Implements
// io.WriterTo.
func (p *Pool) WriteTo(w io.Writer) (int64, error) {
	return p.occ.WriteTo(w)
}

// ReadFrom restores occupancy written by WriteTo into a pool of the
// same capacity and recomputes the claimed count. Implements
// io.ReaderFrom.
func (p *Pool) ReadFrom(r io.Reader) (int64, error) {
	n, err := p.occ.ReadFrom(r)
	if err != nil {
		return n, err
	}
	p.claimed.Store(int64(p.occ.Count()))
	p.cursor.Store(0)
	return n, nil
}
