package data

import "fmt"

// GroupedBy groups the list by the value of the named member. The result is a
// list of maps, in order of first appearance, each holding the group key under
// index and the group's items under children.
func (l List) GroupedBy(index, children string) (List, error) {
	if children == "" {
		children = "Children"
	}
	var (
		groups = make(map[string]int)
		result List
	)
	for _, item := range l {
		key, err := Member(item, index)
		if err != nil {
			return nil, err
		}
		var id = groupKey(key)
		if i, ok := groups[id]; ok {
			var group = result[i].(Map)
			group[children] = append(group[children].(List), item)
			continue
		}
		groups[id] = len(result)
		result = append(result, Map{
			index:    key,
			children: List{item},
		})
	}
	return result, nil
}

func listGroupedBy(l List, args []any) (any, error) {
	var index = ArgString(args, 0, "")
	if index == "" {
		return nil, fmt.Errorf("GroupedBy: a member name is required")
	}
	return l.GroupedBy(index, ArgString(args, 1, "Children"))
}

func groupKey(key any) string {
	if v, ok := key.(Viewable); ok {
		return v.ForTemplate()
	}
	return fmt.Sprint(key)
}
