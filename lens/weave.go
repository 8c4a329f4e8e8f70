package lens

import (
	"github.com/dekarrin/lens/container"
	"github.com/dekarrin/lens/internal/item"
	"github.com/dekarrin/lens/internal/reader"
	"github.com/dekarrin/lens/internal/rollback"
	"github.com/dekarrin/lens/lens/errs"
)

// rollbackTargets adapts an optional reader and container into the
// []rollback.Rollbackable slice rollback.Tentative/TentativeProgress want.
func rollbackTargets(rd *reader.Reader, c container.Container) []rollback.Rollbackable {
	var out []rollback.Rollbackable
	if rd != nil {
		out = append(out, rd)
	}
	if c != nil {
		out = append(out, c)
	}
	return out
}

// discardOccupant advances rd past whatever concrete text currently sits at
// its position, when the model no longer has an item lined up for that slot
// (the original occupant was deleted or moved elsewhere by a reordering
// PUT). It is best-effort: a lens that can't re-derive a bare token from rd
// alone (for instance one that needs its container siblings to disambiguate)
// simply leaves rd untouched, which surfaces later as leftover input rather
// than a hard failure here.
func discardOccupant(c *ctx, l Lens, rd *reader.Reader) {
	if rd == nil || rd.IsExhausted() {
		return
	}
	_ = rollback.Tentative(func() error {
		_, err := l.doGet(c, rd, container.NewList())
		return err
	}, rd)
}

// reconcile implements spec.md §4.8 step 3d: given the outer reader a STORE
// lens is weaving against and the candidate item it is about to PUT, decide
// which reader (if any) the PUT should actually read original text from.
//
//   - If cand's own concrete source is the same document and sits exactly at
//     rd's current position, the two are aligned: weave against rd itself.
//   - Otherwise the slot's original occupant has been replaced or the model
//     has reordered things; discard whatever currently occupies rd's
//     position, then switch to cand's own frozen reader (if it has one) so
//     this lens still reuses cand's original text, just relocated.
//   - If cand was freshly created (no concrete origin), this is a pure
//     CREATE for this position: discard the occupant and PUT with no reader.
func reconcile(c *ctx, l Lens, cand *item.Value, rd *reader.Reader) *reader.Reader {
	if rd == nil {
		return nil
	}
	if cand.Meta.HasConcreteOrigin() && cand.Meta.ConcreteSource.SameSource(rd) && rd.PeekPos() == cand.Meta.ConcreteStart {
		return rd
	}
	discardOccupant(c, l, rd)
	if cand.Meta.HasConcreteOrigin() {
		return cand.Meta.ConcreteSource.Clone()
	}
	return nil
}

// containerPut is spec.md §4.8 step 4's container.consume_and_put_item,
// generalized so every container-bearing combinator (And, Repeat) can use it
// for each child position, not just the top-level driver: a non-STORE child
// passes straight through to its own doPut against the same container (so
// its STORE descendants, if any, can still draw from it); a STORE child
// draws a candidate from parent, reconciles the reader against it, and
// tries doPut, retrying the next candidate on a rollback-safe failure.
func containerPut(c *ctx, l Lens, rd *reader.Reader, parent container.Container) (string, error) {
	o := l.options()
	if !o.HasType {
		return l.doPut(c, nil, rd, parent)
	}
	if parent == nil {
		return "", errs.Assertion("%s: no container to draw a candidate from", describeLens(l))
	}

	if o.IsLabel {
		label, ok := parent.Label()
		if !ok {
			return "", errs.Assertion("%s: container has no label for an is_label lens to put", describeLens(l))
		}
		v := item.New(label)
		v.Meta.IsLabel = true
		return l.doPut(c, &v, rd, nil)
	}

	candidates := parent.Candidates(l)
	if len(candidates) == 0 {
		return "", errs.NoTokenToConsume("%s: no token available to consume from container", describeLens(l))
	}

	var lastErr error
	for _, cand := range candidates {
		var out string
		terr := rollback.Tentative(func() error {
			effectiveRd := reconcile(c, l, cand, rd)
			var err error
			out, err = l.doPut(c, cand, effectiveRd, nil)
			return err
		}, rollbackTargets(rd, nil)...)
		if terr == nil {
			if err := parent.Remove(l, cand); err != nil {
				return "", err
			}
			return out, nil
		}
		lastErr = terr
		if !rollback.IsRollbackSafe(terr) {
			return "", terr
		}
	}
	return "", lastErr
}
