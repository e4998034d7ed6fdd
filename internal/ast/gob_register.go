package ast

import "encoding/gob"

// The Declaration/Statement/Expression interfaces are serialized as part
// of a File (cache envelope wraps a gob-encoded payload), so
// every concrete node type needs registering once up front the way
// encoding/gob requires for any interface-typed field.
func init() {
	gob.Register(&FunctionDecl{})
	gob.Register(&ClassDecl{})
	gob.Register(&TypeAliasDecl{})
	gob.Register(&GlobalConstDecl{})

	gob.Register(&Variable{})
	gob.Register(&Literal{})
	gob.Register(&BinaryOp{})
	gob.Register(&UnaryOp{})
	gob.Register(&Assign{})
	gob.Register(&ArrayFetch{})
	gob.Register(&PropertyFetch{})
	gob.Register(&StaticPropertyFetch{})
	gob.Register(&MethodCall{})
	gob.Register(&StaticCall{})
	gob.Register(&FunctionCall{})
	gob.Register(&NewExpr{})
	gob.Register(&ClosureExpr{})
	gob.Register(&ArrayLiteral{})
	gob.Register(&Ternary{})
	gob.Register(&Cast{})
	gob.Register(&AwaitExpr{})
	gob.Register(&IssetExpr{})

	gob.Register(&ExprStmt{})
	gob.Register(&IfStmt{})
	gob.Register(&WhileStmt{})
	gob.Register(&ForeachStmt{})
	gob.Register(&ForStmt{})
	gob.Register(&ReturnStmt{})
	gob.Register(&BreakStmt{})
	gob.Register(&ContinueStmt{})
	gob.Register(&ThrowStmt{})
	gob.Register(&TryStmt{})
	gob.Register(&BlockStmt{})
	gob.Register(&SwitchStmt{})
}
