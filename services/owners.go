package services

import (
	"strings"

	"pivotalcli/models"
)

// Unassigned は担当者がいないストーリーの表示です
const Unassigned = "unassigned"

// ResolveOwnerNames は担当者IDの一覧を表示名のカンマ区切りに変換します。
// ディレクトリに無いIDは結果に含まれません。
func ResolveOwnerNames(ownerIDs []int64, dir models.Directory) string {
	if len(ownerIDs) == 0 {
		return Unassigned
	}

	names := make([]string, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		if name, ok := dir.NameForID(id); ok {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
