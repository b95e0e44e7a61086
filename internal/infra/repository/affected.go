package repository

import "gorm.io/gorm"

// 更新系の結果を判定する。0件ならmissを返す（条件付きUPDATEの不成立もここに入る）
func affected(res *gorm.DB, miss error) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return miss
	}
	return nil
}
