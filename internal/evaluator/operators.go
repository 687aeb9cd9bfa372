package evaluator

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/esvm-go/esvm/ast"
	"github.com/esvm-go/esvm/internal/runtime"
)

func (e *Evaluator) evalBinary(ctx *runtime.ExecutionContext, n *ast.BinaryExpressionNode) runtime.Completion {
	if n.Operator == "in" {
		if priv, ok := n.Left.(*ast.PrivateIdentifierNode); ok {
			rc := e.evalExpression(ctx, n.Right)
			if rc.IsAbrupt() {
				return rc
			}
			obj, ok := rc.Value.(*runtime.Obj)
			if !ok {
				return e.throwTypeError("cannot use 'in' operator on non-object")
			}
			name := ctx.PrivateEnvironment.Resolve(priv.Name)
			if name == nil {
				return e.throwSyntaxError("Private field '#" + priv.Name + "' must be declared in an enclosing class")
			}
			_, found := runtime.PrivateElementFind(obj, name)
			return runtime.NormalCompletion(runtime.Boolean(found))
		}
	}
	lc := e.evalExpression(ctx, n.Left)
	if lc.IsAbrupt() {
		return lc
	}
	rc := e.evalExpression(ctx, n.Right)
	if rc.IsAbrupt() {
		return rc
	}
	v, c := e.applyBinaryOp(n.Operator, lc.Value, rc.Value)
	if c.IsAbrupt() {
		return c
	}
	return runtime.NormalCompletion(v)
}

func (e *Evaluator) applyBinaryOp(op string, l, r runtime.Value) (runtime.Value, runtime.Completion) {
	switch op {
	case "+":
		return e.evalAdd(l, r)
	case "-", "*", "/", "%", "**":
		return e.evalArith(op, l, r)
	case "&", "|", "^", "<<", ">>", ">>>":
		return e.evalBitwise(op, l, r)
	case "==":
		return runtime.Boolean(looseEquals(l, r)), runtime.NormalCompletion(nil)
	case "!=":
		return runtime.Boolean(!looseEquals(l, r)), runtime.NormalCompletion(nil)
	case "===":
		return runtime.Boolean(strictEquals(l, r)), runtime.NormalCompletion(nil)
	case "!==":
		return runtime.Boolean(!strictEquals(l, r)), runtime.NormalCompletion(nil)
	case "<", ">", "<=", ">=":
		return e.evalRelational(op, l, r)
	case "instanceof":
		return e.evalInstanceof(l, r)
	default:
		return nil, e.throwSyntaxError("unsupported binary operator " + op)
	}
}

func (e *Evaluator) evalAdd(l, r runtime.Value) (runtime.Value, runtime.Completion) {
	lp, rp := e.toPrimitive(l), e.toPrimitive(r)
	if _, ok := lp.(runtime.String); ok {
		return runtime.NewStringFromGo(e.toGoString(lp) + e.toGoString(rp)), runtime.NormalCompletion(nil)
	}
	if _, ok := rp.(runtime.String); ok {
		return runtime.NewStringFromGo(e.toGoString(lp) + e.toGoString(rp)), runtime.NormalCompletion(nil)
	}
	if lbi, ok := lp.(runtime.BigInt); ok {
		rbi, ok2 := rp.(runtime.BigInt)
		if !ok2 {
			return nil, e.throwTypeError("Cannot mix BigInt and other types")
		}
		return runtime.NewBigInt(new(big.Int).Add(lbi.V, rbi.V)), runtime.NormalCompletion(nil)
	}
	return runtime.Number(e.toNumber(lp) + e.toNumber(rp)), runtime.NormalCompletion(nil)
}

func (e *Evaluator) evalArith(op string, l, r runtime.Value) (runtime.Value, runtime.Completion) {
	if lbi, ok := l.(runtime.BigInt); ok {
		rbi, ok2 := r.(runtime.BigInt)
		if !ok2 {
			return nil, e.throwTypeError("Cannot mix BigInt and other types")
		}
		res := new(big.Int)
		switch op {
		case "-":
			res.Sub(lbi.V, rbi.V)
		case "*":
			res.Mul(lbi.V, rbi.V)
		case "/":
			if rbi.V.Sign() == 0 {
				return nil, e.throwRangeError("Division by zero")
			}
			res.Quo(lbi.V, rbi.V)
		case "%":
			if rbi.V.Sign() == 0 {
				return nil, e.throwRangeError("Division by zero")
			}
			res.Rem(lbi.V, rbi.V)
		case "**":
			res.Exp(lbi.V, rbi.V, nil)
		}
		return runtime.NewBigInt(res), runtime.NormalCompletion(nil)
	}
	a, b := e.toNumber(l), e.toNumber(r)
	switch op {
	case "-":
		return runtime.Number(a - b), runtime.NormalCompletion(nil)
	case "*":
		return runtime.Number(a * b), runtime.NormalCompletion(nil)
	case "/":
		return runtime.Number(a / b), runtime.NormalCompletion(nil)
	case "%":
		return runtime.Number(math.Mod(a, b)), runtime.NormalCompletion(nil)
	case "**":
		return runtime.Number(math.Pow(a, b)), runtime.NormalCompletion(nil)
	}
	return runtime.Undefined{}, runtime.NormalCompletion(nil)
}

func (e *Evaluator) evalBitwise(op string, l, r runtime.Value) (runtime.Value, runtime.Completion) {
	a, b := toInt32(e.toNumber(l)), toInt32(e.toNumber(r))
	switch op {
	case "&":
		return runtime.Number(float64(a & b)), runtime.NormalCompletion(nil)
	case "|":
		return runtime.Number(float64(a | b)), runtime.NormalCompletion(nil)
	case "^":
		return runtime.Number(float64(a ^ b)), runtime.NormalCompletion(nil)
	case "<<":
		return runtime.Number(float64(a << (uint32(b) & 31))), runtime.NormalCompletion(nil)
	case ">>":
		return runtime.Number(float64(a >> (uint32(b) & 31))), runtime.NormalCompletion(nil)
	case ">>>":
		return runtime.Number(float64(uint32(a) >> (uint32(b) & 31))), runtime.NormalCompletion(nil)
	}
	return runtime.Undefined{}, runtime.NormalCompletion(nil)
}

func (e *Evaluator) evalRelational(op string, l, r runtime.Value) (runtime.Value, runtime.Completion) {
	lp, rp := e.toPrimitive(l), e.toPrimitive(r)
	if ls, ok := lp.(runtime.String); ok {
		if rs, ok := rp.(runtime.String); ok {
			cmp := strings.Compare(ls.String(), rs.String())
			return runtime.Boolean(compareOk(op, cmp)), runtime.NormalCompletion(nil)
		}
	}
	a, b := e.toNumber(lp), e.toNumber(rp)
	if math.IsNaN(a) || math.IsNaN(b) {
		return runtime.Boolean(false), runtime.NormalCompletion(nil)
	}
	switch op {
	case "<":
		return runtime.Boolean(a < b), runtime.NormalCompletion(nil)
	case ">":
		return runtime.Boolean(a > b), runtime.NormalCompletion(nil)
	case "<=":
		return runtime.Boolean(a <= b), runtime.NormalCompletion(nil)
	case ">=":
		return runtime.Boolean(a >= b), runtime.NormalCompletion(nil)
	}
	return runtime.Boolean(false), runtime.NormalCompletion(nil)
}

func compareOk(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case ">":
		return cmp > 0
	case "<=":
		return cmp <= 0
	case ">=":
		return cmp >= 0
	}
	return false
}

func (e *Evaluator) evalInstanceof(l, r runtime.Value) (runtime.Value, runtime.Completion) {
	ctor, ok := r.(*runtime.Obj)
	if !ok {
		return nil, e.throwTypeError("Right-hand side of 'instanceof' is not an object")
	}
	if hasInstance, ok := ctor.Get(runtime.SymbolKey(runtime.SymHasInstance)).(*runtime.Obj); ok && hasInstance.IsCallable() {
		c := hasInstance.Fn.Call(ctor, []runtime.Value{l})
		if c.IsAbrupt() {
			return nil, c
		}
		return runtime.Boolean(runtime.ToBoolean(c.Value)), runtime.NormalCompletion(nil)
	}
	if !ctor.IsCallable() {
		return nil, e.throwTypeError("Right-hand side of 'instanceof' is not callable")
	}
	obj, ok := l.(*runtime.Obj)
	if !ok {
		return runtime.Boolean(false), runtime.NormalCompletion(nil)
	}
	protoVal := ctor.Get(runtime.StringKey("prototype"))
	proto, ok := protoVal.(*runtime.Obj)
	if !ok {
		return nil, e.throwTypeError("Function has non-object prototype")
	}
	for p := obj.GetPrototypeOf(); p != nil; p = p.GetPrototypeOf() {
		if p == proto {
			return runtime.Boolean(true), runtime.NormalCompletion(nil)
		}
	}
	return runtime.Boolean(false), runtime.NormalCompletion(nil)
}

func strictEquals(a, b runtime.Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case runtime.Undefined, runtime.Null:
		return true
	case runtime.Boolean:
		bv, ok := b.(runtime.Boolean)
		return ok && av == bv
	case runtime.Number:
		bv, ok := b.(runtime.Number)
		return ok && float64(av) == float64(bv)
	case runtime.BigInt:
		bv, ok := b.(runtime.BigInt)
		return ok && av.V.Cmp(bv.V) == 0
	case runtime.String:
		bv, ok := b.(runtime.String)
		return ok && av.String() == bv.String()
	case *runtime.Symbol:
		bv, ok := b.(*runtime.Symbol)
		return ok && av == bv
	case *runtime.Obj:
		bv, ok := b.(*runtime.Obj)
		return ok && av == bv
	}
	return false
}

func looseEquals(a, b runtime.Value) bool {
	if a.Type() == b.Type() {
		return strictEquals(a, b)
	}
	if isNullish(a) && isNullish(b) {
		return true
	}
	if isNullish(a) || isNullish(b) {
		return false
	}
	_, aObj := a.(*runtime.Obj)
	_, bObj := b.(*runtime.Obj)
	if aObj && !bObj {
		return looseEquals(toPrimitiveDefault(a), b)
	}
	if bObj && !aObj {
		return looseEquals(a, toPrimitiveDefault(b))
	}
	an, aok := toNumberLoose(a)
	bn, bok := toNumberLoose(b)
	return aok && bok && an == bn
}

func toPrimitiveDefault(v runtime.Value) runtime.Value {
	if o, ok := v.(*runtime.Obj); ok {
		return runtime.NewStringFromGo(o.String())
	}
	return v
}

func toNumberLoose(v runtime.Value) (float64, bool) {
	switch vv := v.(type) {
	case runtime.Number:
		return float64(vv), true
	case runtime.Boolean:
		if vv {
			return 1, true
		}
		return 0, true
	case runtime.String:
		s := strings.TrimSpace(vv.String())
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// toPrimitive implements enough of ECMA-262's ToPrimitive for operators:
// an object's valueOf is called first, then its toString, and the first
// primitive result wins; when neither yields one, the object's
// Kind-specific String() stand-in is used. @@toPrimitive is not consulted
// here (runtime.ToPrimitive does consult it).
func (e *Evaluator) toPrimitive(v runtime.Value) runtime.Value {
	obj, ok := v.(*runtime.Obj)
	if !ok {
		return v
	}
	if valueOf, ok := obj.Get(runtime.StringKey("valueOf")).(*runtime.Obj); ok && valueOf.IsCallable() {
		r := valueOf.Fn.Call(obj, nil).Value
		if _, isObj := r.(*runtime.Obj); !isObj && r != nil {
			return r
		}
	}
	if toString, ok := obj.Get(runtime.StringKey("toString")).(*runtime.Obj); ok && toString.IsCallable() {
		r := toString.Fn.Call(obj, nil).Value
		if _, isObj := r.(*runtime.Obj); !isObj && r != nil {
			return r
		}
	}
	return runtime.NewStringFromGo(obj.String())
}

func (e *Evaluator) toNumber(v runtime.Value) float64 {
	switch vv := e.toPrimitive(v).(type) {
	case runtime.Number:
		return float64(vv)
	case runtime.Boolean:
		if vv {
			return 1
		}
		return 0
	case runtime.Undefined:
		return math.NaN()
	case runtime.Null:
		return 0
	case runtime.String:
		s := strings.TrimSpace(vv.String())
		if s == "" {
			return 0
		}
		f, err := parseFloatLenient(s)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	return math.NaN()
}

func parseFloatLenient(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func (e *Evaluator) toGoString(v runtime.Value) string {
	switch vv := e.toPrimitive(v).(type) {
	case runtime.String:
		return vv.String()
	default:
		if vv == nil {
			return ""
		}
		return vv.String()
	}
}

// toObjectWrapper implements the ToObject abstract operation (ECMA-262)
// for the primitive wrapper types the evaluator needs when member access
// lands on a primitive base (e.g. `"abc".length`).
func (e *Evaluator) toObjectWrapper(ctx *runtime.ExecutionContext, v runtime.Value) *runtime.Obj {
	switch vv := v.(type) {
	case runtime.String:
		proto := ctx.Realm.Intrinsic("%String.prototype%")
		o := runtime.NewOrdinaryObject(proto)
		o.Kind = runtime.KindStringWrap
		o.Str = &runtime.StringWrapSlots{Data: vv}
		o.DefineOwnProperty(runtime.StringKey("length"), runtime.NewDataDescriptor(runtime.Number(vv.Len()), false, false, false))
		return o
	case runtime.Number:
		proto := ctx.Realm.Intrinsic("%Number.prototype%")
		o := runtime.NewOrdinaryObject(proto)
		o.HostData = vv
		return o
	case runtime.Boolean:
		proto := ctx.Realm.Intrinsic("%Boolean.prototype%")
		o := runtime.NewOrdinaryObject(proto)
		o.HostData = vv
		return o
	case *runtime.Symbol:
		proto := ctx.Realm.Intrinsic("%Symbol.prototype%")
		o := runtime.NewOrdinaryObject(proto)
		o.HostData = vv
		return o
	case runtime.BigInt:
		proto := ctx.Realm.Intrinsic("%BigInt.prototype%")
		o := runtime.NewOrdinaryObject(proto)
		o.HostData = vv
		return o
	}
	return runtime.NewOrdinaryObject(nil)
}
