package ast

import "testing"

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, err := ParseFile("test.php", []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	return f
}

func TestParseNamespaceAndUse(t *testing.T) {
	f := mustParse(t, `<?php
namespace App\Controller;
use App\Service\Auth;
use App\Service\Logger as Log;
class UserController {}
`)
	if f.Namespace != `App\Controller` {
		t.Fatalf("expected namespace App\\Controller, got %q", f.Namespace)
	}
	if len(f.Uses) != 2 {
		t.Fatalf("expected 2 use declarations, got %d", len(f.Uses))
	}
	if f.Uses[1].Alias != "Log" {
		t.Fatalf("expected alias Log, got %q", f.Uses[1].Alias)
	}
}

func TestParseClassExtendsImplements(t *testing.T) {
	f := mustParse(t, `<?php
class UserController extends BaseController implements HasAuth, HasLogging {
    public function index() {}
}
`)
	if len(f.Classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(f.Classes))
	}
	cl := f.Classes[0]
	if cl.Kind != KindClass {
		t.Fatalf("expected KindClass, got %v", cl.Kind)
	}
	if len(cl.Extends) != 1 || cl.Extends[0] != "BaseController" {
		t.Fatalf("expected extends [BaseController], got %v", cl.Extends)
	}
	if len(cl.Implements) != 2 {
		t.Fatalf("expected 2 implemented interfaces, got %v", cl.Implements)
	}
}

func TestParseTraitAndInterface(t *testing.T) {
	f := mustParse(t, `<?php
trait Authenticatable {
    public function doAuth() {}
}
interface UseCase {
    public function execute();
}
class C {
    use Authenticatable;
}
`)
	var trait, iface, class *ClassLike
	for _, cl := range f.Classes {
		switch cl.Kind {
		case KindTrait:
			trait = cl
		case KindInterface:
			iface = cl
		case KindClass:
			class = cl
		}
	}
	if trait == nil || trait.Name != "Authenticatable" {
		t.Fatal("expected to find the Authenticatable trait")
	}
	if iface == nil || len(iface.Methods) != 1 {
		t.Fatal("expected the UseCase interface with one abstract method")
	}
	if iface.Methods[0].Body != nil {
		t.Fatal("expected an interface method to have a nil body")
	}
	if class == nil || len(class.UsedTraits) != 1 || class.UsedTraits[0] != "Authenticatable" {
		t.Fatalf("expected class C to use Authenticatable, got %v", class)
	}
}

func TestParseConstructorPromotion(t *testing.T) {
	f := mustParse(t, `<?php
class A {
    public function __construct(private B $b, int $count) {}
}
`)
	cl := f.Classes[0]
	var promoted []string
	for _, p := range cl.Properties {
		if p.Promoted {
			promoted = append(promoted, p.Name)
		}
	}
	if len(promoted) != 1 || promoted[0] != "b" {
		t.Fatalf("expected only the visibility-modified parameter promoted, got %v (all props: %+v)", promoted, cl.Properties)
	}
}

func TestParseMethodCallAndPropertyFetch(t *testing.T) {
	f := mustParse(t, `<?php
class A {
    public function __construct(private B $b) {}
    public function run() {
        $this->b->auth();
    }
}
`)
	cl := f.Classes[0]
	var run *Method
	for _, m := range cl.Methods {
		if m.Name == "run" {
			run = m
		}
	}
	if run == nil || len(run.Body) == 0 {
		t.Fatal("expected the run method to have a non-empty body")
	}
	es, ok := run.Body[0].(ExprStmt)
	if !ok {
		t.Fatalf("expected the first statement to be an expression statement, got %T", run.Body[0])
	}
	call, ok := es.Expr.(MethodCallExpr)
	if !ok {
		t.Fatalf("expected a method call expression, got %T", es.Expr)
	}
	if call.Name != "auth" {
		t.Fatalf("expected a call to auth, got %s", call.Name)
	}
	recv, ok := call.Recv.(PropFetchExpr)
	if !ok {
		t.Fatalf("expected the receiver to be a property fetch, got %T", call.Recv)
	}
	if recv.Name != "b" {
		t.Fatalf("expected property fetch of b, got %s", recv.Name)
	}
	if _, ok := recv.Recv.(ThisExpr); !ok {
		t.Fatalf("expected $this as the property fetch receiver, got %T", recv.Recv)
	}
}

func TestParseStaticAndParentCall(t *testing.T) {
	f := mustParse(t, `<?php
class A {
    public function run() {
        parent::run();
        self::helper();
    }
}
`)
	run := f.Classes[0].Methods[0]
	if len(run.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(run.Body))
	}
	for _, stmt := range run.Body {
		es, ok := stmt.(ExprStmt)
		if !ok {
			t.Fatalf("expected an expression statement, got %T", stmt)
		}
		if _, ok := es.Expr.(StaticCallExpr); !ok {
			t.Fatalf("expected a static call expression, got %T", es.Expr)
		}
	}
}
