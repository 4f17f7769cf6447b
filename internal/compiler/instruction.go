package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/sealint/sealint/internal/model"
)

// CompileInstruction parses a CUE value into an Instruction.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the instruction struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`instruction: withdraw: { ... }`)
//	inst, err := CompileInstruction(v.LookupPath(cue.ParsePath("instruction.withdraw")))
func CompileInstruction(v cue.Value) (*model.Instruction, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	inst := &model.Instruction{}

	// Instruction name comes from the struct label (the path selector).
	// The label may be quoted in CUE, strip the quotes.
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		inst.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	accountsVal := v.LookupPath(cue.ParsePath("accounts"))
	if !accountsVal.Exists() {
		return nil, &CompileError{
			Field:   "accounts",
			Message: "accounts list is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := accountsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		req, err := parseAccount(iter.Value())
		if err != nil {
			return nil, err
		}
		inst.Accounts = append(inst.Accounts, *req)
	}
	if len(inst.Accounts) == 0 {
		return nil, &CompileError{
			Field:   "accounts",
			Message: "at least one account is required",
			Pos:     accountsVal.Pos(),
		}
	}

	effectsVal := v.LookupPath(cue.ParsePath("effects"))
	if effectsVal.Exists() {
		effIter, err := effectsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for effIter.Next() {
			eff, err := parseEffect(effIter.Value())
			if err != nil {
				return nil, err
			}
			inst.Effects = append(inst.Effects, eff)
		}
	}

	return inst, nil
}

func parseAccount(v cue.Value) (*model.AccountRequirement, error) {
	req := &model.AccountRequirement{}

	name, err := requiredString(v, "name")
	if err != nil {
		return nil, err
	}
	req.Name = name

	kind, err := requiredString(v, "kind")
	if err != nil {
		return nil, err
	}
	req.Kind = model.AccountKind(kind)
	if !model.ValidAccountKinds[req.Kind] {
		return nil, &CompileError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown account kind %q", kind),
			Pos:     v.LookupPath(cue.ParsePath("kind")).Pos(),
		}
	}

	if req.Mutable, err = optionalBool(v, "mutable"); err != nil {
		return nil, err
	}
	if req.Init, err = optionalBool(v, "init"); err != nil {
		return nil, err
	}
	if req.Documented, err = optionalBool(v, "documented"); err != nil {
		return nil, err
	}
	if req.Space, err = optionalInt(v, "space"); err != nil {
		return nil, err
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if fieldsVal.Exists() {
		iter, err := fieldsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			fs, err := parseFieldSpec(iter.Value())
			if err != nil {
				return nil, err
			}
			req.Fields = append(req.Fields, fs)
		}
	}

	consVal := v.LookupPath(cue.ParsePath("constraints"))
	if consVal.Exists() {
		iter, err := consVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			con, err := parseConstraint(iter.Value())
			if err != nil {
				return nil, err
			}
			req.Constraints = append(req.Constraints, con)
		}
	}

	return req, nil
}

func parseFieldSpec(v cue.Value) (model.FieldSpec, error) {
	var fs model.FieldSpec

	name, err := requiredString(v, "name")
	if err != nil {
		return fs, err
	}
	fs.Name = name

	typ, err := requiredString(v, "type")
	if err != nil {
		return fs, err
	}
	fs.Type = model.FieldType(typ)
	if !model.ValidFieldTypes[fs.Type] {
		return fs, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unknown field type %q", typ),
			Pos:     v.LookupPath(cue.ParsePath("type")).Pos(),
		}
	}

	if fs.MaxLen, err = optionalInt(v, "max_len"); err != nil {
		return fs, err
	}
	return fs, nil
}

// parseConstraint dispatches a constraint struct on its discriminating
// key. Exactly one form must match.
func parseConstraint(v cue.Value) (model.Constraint, error) {
	if target := v.LookupPath(cue.ParsePath("has_one")); target.Exists() {
		s, err := target.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return model.HasOne{Target: s}, nil
	}

	if seedsVal := v.LookupPath(cue.ParsePath("seeds")); seedsVal.Exists() {
		var sb model.SeedsBump
		iter, err := seedsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			seed, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			sb.Seeds = append(sb.Seeds, seed)
		}
		bump, err := requiredString(v, "bump")
		if err != nil {
			return nil, err
		}
		sb.Bump = model.BumpSource(bump)
		if !model.ValidBumpSources[sb.Bump] {
			return nil, &CompileError{
				Field:   "bump",
				Message: fmt.Sprintf("unknown bump source %q", bump),
				Pos:     v.LookupPath(cue.ParsePath("bump")).Pos(),
			}
		}
		return sb, nil
	}

	if prog := v.LookupPath(cue.ParsePath("owner_check")); prog.Exists() {
		s, err := prog.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return model.OwnerCheck{Program: s}, nil
	}

	if refund := v.LookupPath(cue.ParsePath("close")); refund.Exists() {
		s, err := refund.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return model.Close{RefundTo: s}, nil
	}

	if exprVal := v.LookupPath(cue.ParsePath("expr")); exprVal.Exists() {
		raw := model.RawExpr{}
		expr, err := exprVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		raw.Expr = expr

		pred, err := requiredString(v, "pred")
		if err != nil {
			return nil, err
		}
		raw.Pred = model.PredKind(pred)
		if !model.ValidPredKinds[raw.Pred] {
			return nil, &CompileError{
				Field:   "pred",
				Message: fmt.Sprintf("unknown predicate kind %q", pred),
				Pos:     v.LookupPath(cue.ParsePath("pred")).Pos(),
			}
		}

		refsVal := v.LookupPath(cue.ParsePath("refs"))
		if refsVal.Exists() {
			iter, err := refsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for iter.Next() {
				ref, err := parseFieldRef(iter.Value())
				if err != nil {
					return nil, err
				}
				raw.Refs = append(raw.Refs, ref)
			}
		}
		return raw, nil
	}

	return nil, &CompileError{
		Field:   "constraints",
		Message: "constraint must have one of: has_one, seeds, owner_check, close, expr",
		Pos:     v.Pos(),
	}
}

// parseEffect dispatches an effect struct on its discriminating key.
func parseEffect(v cue.Value) (model.Effect, error) {
	if mv := v.LookupPath(cue.ParsePath("mutate")); mv.Exists() {
		slot, err := requiredString(mv, "slot")
		if err != nil {
			return nil, err
		}
		mut := model.Mutate{Slot: slot}
		if fv := mv.LookupPath(cue.ParsePath("field")); fv.Exists() {
			if mut.Field, err = requiredString(mv, "field"); err != nil {
				return nil, err
			}
		}
		return mut, nil
	}

	if tv := v.LookupPath(cue.ParsePath("transfer")); tv.Exists() {
		from, err := requiredString(tv, "from")
		if err != nil {
			return nil, err
		}
		to, err := requiredString(tv, "to")
		if err != nil {
			return nil, err
		}
		return model.Transfer{From: from, To: to}, nil
	}

	if cv := v.LookupPath(cue.ParsePath("close_account")); cv.Exists() {
		slot, err := cv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return model.CloseAccount{Slot: slot}, nil
	}

	if iv := v.LookupPath(cue.ParsePath("invoke")); iv.Exists() {
		prog, err := iv.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return model.Invoke{Program: prog}, nil
	}

	if av := v.LookupPath(cue.ParsePath("arithmetic")); av.Exists() {
		op, err := requiredString(av, "op")
		if err != nil {
			return nil, err
		}
		checked, err := optionalBool(av, "checked")
		if err != nil {
			return nil, err
		}
		arith := model.Arithmetic{Op: op, Checked: checked}
		if tgt := av.LookupPath(cue.ParsePath("target")); tgt.Exists() {
			ref, err := parseFieldRef(tgt)
			if err != nil {
				return nil, err
			}
			arith.Target = ref
		}
		return arith, nil
	}

	if xv := v.LookupPath(cue.ParsePath("indexed_access")); xv.Exists() {
		collection, err := requiredString(xv, "collection")
		if err != nil {
			return nil, err
		}
		source, err := requiredString(xv, "index_source")
		if err != nil {
			return nil, err
		}
		known, err := optionalBool(xv, "bounds_known")
		if err != nil {
			return nil, err
		}
		return model.IndexedAccess{Collection: collection, IndexSource: source, BoundsKnown: known}, nil
	}

	if tsv := v.LookupPath(cue.ParsePath("timestamp_compare")); tsv.Exists() {
		lhs, err := requiredString(tsv, "lhs")
		if err != nil {
			return nil, err
		}
		rhs, err := requiredString(tsv, "rhs")
		if err != nil {
			return nil, err
		}
		checked, err := optionalBool(tsv, "checked")
		if err != nil {
			return nil, err
		}
		return model.TimestampCompare{LHS: lhs, RHS: rhs, Checked: checked}, nil
	}

	return nil, &CompileError{
		Field:   "effects",
		Message: "effect must have one of: mutate, transfer, close_account, invoke, arithmetic, indexed_access, timestamp_compare",
		Pos:     v.Pos(),
	}
}

func parseFieldRef(v cue.Value) (model.FieldRef, error) {
	var ref model.FieldRef
	slot, err := requiredString(v, "slot")
	if err != nil {
		return ref, err
	}
	ref.Slot = slot

	fieldVal := v.LookupPath(cue.ParsePath("field"))
	if fieldVal.Exists() {
		field, err := fieldVal.String()
		if err != nil {
			return ref, formatCUEError(err)
		}
		ref.Field = field
	}
	return ref, nil
}

func requiredString(v cue.Value, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   path,
			Message: path + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalBool(v cue.Value, path string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func optionalInt(v cue.Value, path string) (int64, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return 0, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return n, nil
}
