package model

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const trackingSuffixLen = 9

// 36^9
const trackingSuffixSpace = 101559956668416

// ORD-<unixミリ秒>-<英数字9桁>
func NewTrackingNumber(now time.Time) string {
	id := uuid.New()
	// 先頭6バイトはversion/variantのビットを含まない
	var buf [8]byte
	copy(buf[2:], id[:6])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), trackingSuffix(binary.BigEndian.Uint64(buf[:])))
}

// 0-9A-Zの9桁にする
func trackingSuffix(v uint64) string {
	s := strings.ToUpper(strconv.FormatUint(v%trackingSuffixSpace, 36))
	return strings.Repeat("0", trackingSuffixLen-len(s)) + s
}

// 新規作成時だけ採番する。更新系はtracking_numberを書き換えない
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.TrackingNumber == "" {
		o.TrackingNumber = NewTrackingNumber(time.Now())
	}
	return nil
}
