// Package bzgate gates go test execution on the state of Bugzilla bugs.
//
// A test declares the bugs that block it. While every declared bug is still
// in a pre-development state (NEW, ASSIGNED or ON_DEV) the test is skipped;
// as soon as any one bug has progressed past those states the test runs
// again. Guards add conditional gating on top of that: a skip guard skips
// the test while a condition over a bug holds, an xfail guard runs the test
// but treats a failure as the expected outcome.
//
// Typical wiring, once per test binary:
//
//	var gate *bzgate.Gater
//
//	func TestMain(m *testing.M) {
//		g, err := bzgate.NewFromEnvironment()
//		if err != nil {
//			log.Fatal(err)
//		}
//		gate = g
//		os.Exit(m.Run())
//	}
//
// and per test:
//
//	func TestSomething(t *testing.T) {
//		gate.Run(t, func(t testing.TB) {
//			// test body
//		}, bzgate.Bugs(1234, "2345"))
//	}
//
//	func TestFixedSoon(t *testing.T) {
//		gate.Run(t, func(t testing.TB) {
//			// test body
//		},
//			bzgate.Bugs(567),
//			bzgate.XFailWhen(func(ctx bzgate.GuardContext) bool {
//				fixedIn, err := ctx.Bug.LooseField("fixed_in")
//				return err == nil && fixedIn.GreaterThan(ctx.Version)
//			}, bzgate.ParamBug, bzgate.ParamVersion),
//		)
//	}
//
// Configuration comes from bugzilla.yaml and environment variables (see
// LoadConfig). Fields named in looseversion_fields are readable through
// Bug.LooseField as ordered versions: a leading non-numeric prefix is
// stripped, so "rhel-7.3" compares as "7.3".
//
// When the Bugzilla URL or the tested product version is not configured,
// gating is disabled and every test runs untouched.
package bzgate
