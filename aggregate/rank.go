package aggregate

import "sort"

// TopN возвращает n групп с наибольшим числом строк.
// Сортировка устойчивая: при равенстве сохраняется исходный порядок групп.
func TopN(counts Counts, n int) Counts {
	return limit(SortDescending(counts), n)
}

// BottomN возвращает n групп с наименьшим числом строк
func BottomN(counts Counts, n int) Counts {
	sorted := counts.clone()
	sort.SliceStable(sorted.Rows, func(i, j int) bool {
		return sorted.Rows[i].Count < sorted.Rows[j].Count
	})
	return limit(sorted, n)
}

// SortDescending возвращает все группы по убыванию числа строк
func SortDescending(counts Counts) Counts {
	sorted := counts.clone()
	sort.SliceStable(sorted.Rows, func(i, j int) bool {
		return sorted.Rows[i].Count > sorted.Rows[j].Count
	})
	return sorted
}

func limit(counts Counts, n int) Counts {
	if n <= 0 {
		counts.Rows = counts.Rows[:0]
		return counts
	}
	if n < len(counts.Rows) {
		counts.Rows = counts.Rows[:n]
	}
	return counts
}
