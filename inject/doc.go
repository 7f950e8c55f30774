// Package inject implements a dependency-injection runtime for Go.
//
// It builds a directed graph of bindings keyed by (type, name) and wires
// object graphs with well-defined ownership: value, unique, reference,
// shared singleton, and goroutine-local singleton.
//
// The following example illustrates a simple application:
//
//	type mongoConfig struct {
//	    URI string
//	}
//
//	func (c *mongoConfig) Configure(b Binder) error {
//	    b.Bind(KeyOf[*mgo.Database](""), func(bb *BindingBuilder) {
//	        bb.ToSingleton(func() (*mgo.Database, error) {
//	            s, err := mgo.Dial(c.URI)
//	            if err != nil {
//	                return nil, err
//	            }
//	            return s.DB("my_db"), nil
//	        })
//	    })
//	    return nil
//	}
//
//	func main() {
//	    injector, err := Create([]Configuration{&mongoConfig{URI: "mongodb://localhost"}})
//	    if err != nil {
//	        panic(err)
//	    }
//	    defer injector.Close()
//
//	    db, err := GetShared[*mgo.Database](injector, "")
//	    if err != nil {
//	        panic(err)
//	    }
//	    _ = db
//	}
//
// A Configuration is any value whose Configure method records bindings
// into a Binder. Child injectors (Injector.CreateChild) extend the
// binding set of a parent without ever mutating it; a lookup that misses
// in the child falls back to the parent.
package inject
