package table_test

import (
	"fmt"

	"github.com/joshuapare/slotkit/slot/table"
)

type session struct {
	user string
}

func Example() {
	sessions := table.MustNew[session](2)

	id, _ := sessions.Insert(&session{user: "alice"})
	fmt.Println(id, sessions.Load(id).user)

	// Reserve first, publish later.
	id2, ok := sessions.Alloc()
	fmt.Println(id2, ok, sessions.Load(id2) == nil)
	_ = sessions.Publish(id2, &session{user: "bob"})

	_, err := sessions.Insert(&session{user: "carol"})
	fmt.Println(err)

	sessions.Remove(id)
	id3, _ := sessions.Insert(&session{user: "carol"})
	fmt.Println(id3, sessions.Load(id3).user)

	// Output:
	// 0 alice
	// 1 true true
	// table: exhausted: capacity 2
	// 0 carol
}
