package resolver

import (
	"github.com/t14raptor/fastscope/ast"
	"github.com/t14raptor/fastscope/diag"
	"github.com/t14raptor/fastscope/token"
)

// inLoop allocates the label of a loop and makes it the target of
// unlabelled break and continue while body runs.
func (r *Resolver) inLoop(n ast.NodeRef, body func()) {
	fc := r.fc()
	r.sem.stmtLabels[n.Ptr()] = r.sem.newLabel(fc.id, 0, n)

	savedLoop, savedLoopOrSwitch := fc.loop, fc.loopOrSwitch
	fc.loop, fc.loopOrSwitch = n, n
	body()
	fc.loop, fc.loopOrSwitch = savedLoop, savedLoopOrSwitch
}

func (r *Resolver) visitSwitch(n ast.NodeRef, s *ast.SwitchStatement) {
	// the discriminant is outside the scope of the cases
	r.visit(s.Discriminant)

	fc := r.fc()
	r.sem.stmtLabels[n.Ptr()] = r.sem.newLabel(fc.id, 0, n)
	saved := fc.loopOrSwitch
	fc.loopOrSwitch = n
	r.inNewScope(n, func() {
		r.processDeclarations(fc.decls.ScopeDecls(n.Ptr()), false)
		r.visitList(s.Body)
	})
	fc.loopOrSwitch = saved
}

func (r *Resolver) visitForInOf(n, left, right, body ast.NodeRef, forIn bool) {
	r.inLoop(n, func() {
		r.inNewScope(n, func() {
			r.processDeclarations(r.fc().decls.ScopeDecls(n.Ptr()), false)
			r.visit(left)
			if decl, ok := ast.As[*ast.VariableDeclaration](r.lock, left); ok {
				r.checkForInOfDeclaration(decl, forIn)
			} else if !r.isAssignTarget(left) {
				r.errorf(diag.SemInvalidAssignTarget, left, "invalid assignment left-hand side").Emit()
			}
			r.visit(right)
			r.visit(body)
		})
	})
}

func (r *Resolver) checkForInOfDeclaration(decl *ast.VariableDeclaration, forIn bool) {
	for d := range r.lock.Items(decl.List) {
		declarator := ast.Get[*ast.VariableDeclarator](r.lock, d)
		if declarator.Initializer.IsZero() {
			continue
		}
		switch {
		case r.lock.Kind(declarator.Target) != ast.KindIdentifier:
			r.errorf(diag.SemForInOfInitializer, declarator.Initializer,
				"destructuring declaration cannot be initialized in for-in/for-of loop").Emit()
		case forIn && decl.Token == token.Var && !r.strict():
			// Annex B.3.6 initializer
		default:
			r.errorf(diag.SemForInOfInitializer, declarator.Initializer,
				"for-in/for-of variable declaration may not be initialized").Emit()
		}
	}
}

func (r *Resolver) visitLabelled(n ast.NodeRef, l *ast.LabelledStatement) {
	fc := r.fc()
	name := ast.Get[*ast.Identifier](r.lock, l.Label).Name
	if prev, ok := fc.labels[name]; ok {
		r.errorf(diag.SemLabelRedefined, l.Label, "label '"+r.lock.Str(name)+"' is already defined").
			WithNote(r.span(prev.ident), "previous definition").
			Emit()
		r.visit(l.Statement)
		return
	}

	// a chain of labels names the innermost loop or switch
	target := l.Statement
	for {
		inner, ok := ast.As[*ast.LabelledStatement](r.lock, target)
		if !ok {
			break
		}
		target = inner.Statement
	}
	if k := r.lock.Kind(target); !k.IsLoop() && k != ast.KindSwitchStatement {
		target = n
	}

	label := r.sem.newLabel(fc.id, name, target)
	r.sem.stmtLabels[n.Ptr()] = label
	fc.labels[name] = labelEntry{ident: l.Label, target: target, label: label}
	r.visit(l.Statement)
	delete(fc.labels, name)
}

func (r *Resolver) visitBreak(n ast.NodeRef, b *ast.BreakStatement) {
	fc := r.fc()
	if !b.Label.IsZero() {
		name := ast.Get[*ast.Identifier](r.lock, b.Label).Name
		entry, ok := fc.labels[name]
		if !ok {
			r.errorf(diag.SemLabelUndefined, b.Label, "label '"+r.lock.Str(name)+"' is not defined").Emit()
			return
		}
		r.sem.stmtLabels[n.Ptr()] = entry.label
		return
	}
	if fc.loopOrSwitch.IsZero() {
		r.errorf(diag.SemBreakOutside, n, "'break' not within a loop or a switch").Emit()
		return
	}
	r.sem.stmtLabels[n.Ptr()] = r.sem.stmtLabels[fc.loopOrSwitch.Ptr()]
}

func (r *Resolver) visitContinue(n ast.NodeRef, c *ast.ContinueStatement) {
	fc := r.fc()
	if !c.Label.IsZero() {
		name := ast.Get[*ast.Identifier](r.lock, c.Label).Name
		entry, ok := fc.labels[name]
		if !ok {
			r.errorf(diag.SemLabelUndefined, c.Label, "label '"+r.lock.Str(name)+"' is not defined").Emit()
			return
		}
		if !r.lock.Kind(entry.target).IsLoop() {
			r.errorf(diag.SemContinueNotLoopLabel, c.Label,
				"'continue' label '"+r.lock.Str(name)+"' is not a loop label").
				WithNote(r.span(entry.ident), "label defined here").
				Emit()
			return
		}
		r.sem.stmtLabels[n.Ptr()] = entry.label
		return
	}
	if fc.loop.IsZero() {
		r.errorf(diag.SemContinueOutside, n, "'continue' not within a loop or switch").Emit()
		return
	}
	r.sem.stmtLabels[n.Ptr()] = r.sem.stmtLabels[fc.loop.Ptr()]
}

// checkAssignTarget validates the left side of an assignment. Plain
// assignment accepts destructuring patterns, compound assignment only
// simple targets.
func (r *Resolver) checkAssignTarget(op token.Token, left ast.NodeRef) {
	ok := r.isLValue(left)
	if op == token.Assign {
		ok = r.isAssignTarget(left)
	}
	if !ok {
		r.errorf(diag.SemInvalidAssignTarget, left, "invalid assignment left-hand side").Emit()
	}
}

// isAssignTarget accepts lvalues and destructuring patterns of lvalues.
func (r *Resolver) isAssignTarget(n ast.NodeRef) bool {
	switch p := r.lock.Node(n).(type) {
	case *ast.ArrayPattern:
		for e := range r.lock.Items(p.Elements) {
			if !e.IsZero() && !r.isAssignTarget(e) {
				return false
			}
		}
		return p.Rest.IsZero() || r.isAssignTarget(p.Rest)
	case *ast.ObjectPattern:
		for prop := range r.lock.Items(p.Properties) {
			switch pr := r.lock.Node(prop).(type) {
			case *ast.PropertyKeyed:
				if !r.isAssignTarget(pr.Value) {
					return false
				}
			case *ast.PropertyShort:
				if !r.isAssignTarget(pr.Name) {
					return false
				}
			default:
				return false
			}
		}
		return p.Rest.IsZero() || r.isAssignTarget(p.Rest)
	case *ast.AssignPattern:
		return r.isAssignTarget(p.Target)
	}
	return r.isLValue(n)
}

func (r *Resolver) isLValue(n ast.NodeRef) bool {
	switch node := r.lock.Node(n).(type) {
	case *ast.MemberExpression:
		return true
	case *ast.Identifier:
		decl, resolved := r.sem.identDecl(n)
		if resolved && r.sem.Decl(decl).Kind == DeclConst {
			return false
		}
		if r.strict() {
			return node.Name != r.kw.arguments && node.Name != r.kw.eval
		}
		return !resolved || r.sem.Decl(decl).Special != SpecialArguments
	}
	return false
}
