package diagram

import "fmt"

// EnsureUniqueConnectionIDs gives every connection a unique ID.
// Connections with an empty or already used ID get a generated "c<n>" ID.
func EnsureUniqueConnectionIDs(diagram *Diagram) {
	if diagram == nil || len(diagram.Connections) == 0 {
		return
	}

	used := make(map[string]bool)
	var needsID []int

	for i := range diagram.Connections {
		id := diagram.Connections[i].ID
		if id == "" || used[id] {
			needsID = append(needsID, i)
			continue
		}
		used[id] = true
	}

	next := 0
	for _, i := range needsID {
		id := fmt.Sprintf("c%d", next)
		for used[id] {
			next++
			id = fmt.Sprintf("c%d", next)
		}
		diagram.Connections[i].ID = id
		used[id] = true
	}
}
