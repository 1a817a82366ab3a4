package domain

import "slices"

// reorderIDs moves the id at from to position to within one sequence.
// to is read against the sequence after the id has been removed, so moving
// index 0 to index 2 in [a b c d] yields [b c a d].
func reorderIDs(ids []string, from, to int) []string {
	out := slices.Clone(ids)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, clampInsert(to, len(out)), moved)
}

// transferIDs removes the id at from in src and inserts it at to in dst.
// dst was never shortened, so to is read against its original length.
func transferIDs(src, dst []string, from, to int) ([]string, []string) {
	source := slices.Clone(src)
	moved := source[from]
	source = slices.Delete(source, from, from+1)
	dest := slices.Clone(dst)
	dest = slices.Insert(dest, clampInsert(to, len(dest)), moved)
	return source, dest
}

// removeID returns ids without any occurrence of id.
func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(candidate string) bool {
		return candidate == id
	})
}

// clampInsert caps an insertion index at the end of a sequence of length n.
func clampInsert(idx, n int) int {
	if idx > n {
		return n
	}
	return idx
}
