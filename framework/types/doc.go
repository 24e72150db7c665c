// Package types provides the type registry that backs the auto-wiring
// resolver in framework/container.
//
// # Overview
//
// Go compiles type information away, so anything the resolver needs to know
// about your types — which interfaces a struct satisfies, which constructor
// builds it, which module declared it — has to be recorded explicitly at
// startup. The registry is that record. You declare types into named modules
// once during bootstrap; the container then reads the registry for the rest
// of the process lifetime.
//
// Every declared or referenced type is interned to a single Ref. Refs are
// cheap comparable handles: two Refs obtained from the same registry are
// equal exactly when they denote the same type.
//
// # Modules
//
// A Module groups declarations the way an assembly or a package groups types.
// Modules name the other modules they use, and that ordering is what makes
// implementation discovery "closest first": the resolver searches the
// requesting type's own module, then the modules it uses, then everything
// else.
//
//	reg := types.NewRegistry()
//	infra := reg.Module("infra")
//	app := reg.Module("app", "infra")
//
// # Declaring Go types
//
// Provide registers a constructor function. The parameter types are read via
// reflection and become the declaration's dependencies; the result type must
// be a concrete struct or pointer, never an interface.
//
//	// transient is inferred when a dependency is transient,
//	// singleton otherwise — no lifetime needs to be written down
//	infra.Provide(NewPgxPool)
//	app.Provide(NewUserService)   // func NewUserService(p *PgxPool) *UserService
//
//	// pre-built value, always a singleton
//	infra.Instance(cfg)
//
//	// explicit lifetime when inference should not decide
//	infra.Provide(NewAuditBuffer, types.WithLifetime(types.Transient))
//
// # Declaring metadata types
//
// Generic declarations cannot be expressed with reflection — Go has no open
// generic values at runtime — so they live purely in registry metadata, with
// type-erased factories. Define, DefineInterface and DefineAbstract create
// such declarations; Arity makes them open generic definitions.
//
//	entity := reg.Module("domain").DefineInterface("Entity")
//	repo := app.DefineInterface("Repo", types.Arity(1),
//	    types.Where(0, func(a types.Ref) bool { return reg.Assignable(a, entity) }))
//
//	app.Define("MemRepo", types.Arity(1),
//	    types.Implements(types.App(repo, types.Arg(0))),
//	    types.Ctor(newMemRepo))
//
// A closed form such as Repo[User] is built with Of (panicking sugar) or
// Apply (error-returning, used by the container during discovery):
//
//	target := repo.Of(user)
//
// Closed forms are interned too: closing the same definition with the same
// arguments always yields the same Ref.
//
// # Phases
//
// Declare first, resolve after. The registry is safe for concurrent reads,
// and closing generic forms during resolution is safe, but interleaving new
// module declarations with resolution is not supported.
package types
