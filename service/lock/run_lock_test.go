package lock

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeLock 测试用内存锁
type fakeLock struct {
	held     bool
	lockErr  error
	unlocked int
}

func (f *fakeLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if f.lockErr != nil {
		return false, f.lockErr
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Unlock(ctx context.Context, key string) error {
	f.held = false
	f.unlocked++
	return nil
}

func TestWithLock(t *testing.T) {
	l := &fakeLock{}
	executed := false

	err := WithLock(context.Background(), l, "run", time.Minute, func() error {
		executed = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}
	if !executed {
		t.Error("获取到锁时应执行函数")
	}
	if l.unlocked != 1 {
		t.Errorf("解锁次数 = %d, 期望 1", l.unlocked)
	}
}

func TestWithLockHeldByOther(t *testing.T) {
	l := &fakeLock{held: true}
	executed := false

	// 锁被其他实例持有:跳过执行,不是错误
	err := WithLock(context.Background(), l, "run", time.Minute, func() error {
		executed = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithLock() error = %v", err)
	}
	if executed {
		t.Error("未获取到锁时不应执行函数")
	}
	if l.unlocked != 0 {
		t.Errorf("未持有的锁不应被释放, 解锁次数 = %d", l.unlocked)
	}
}

func TestWithLockErrors(t *testing.T) {
	l := &fakeLock{lockErr: errors.New("redis down")}
	if err := WithLock(context.Background(), l, "run", time.Minute, func() error { return nil }); err == nil {
		t.Error("锁获取出错应返回错误")
	}

	// 函数错误透传,锁仍被释放
	l = &fakeLock{}
	fnErr := errors.New("run failed")
	err := WithLock(context.Background(), l, "run", time.Minute, func() error { return fnErr })
	if !errors.Is(err, fnErr) {
		t.Errorf("函数错误应透传: %v", err)
	}
	if l.unlocked != 1 {
		t.Errorf("出错时锁仍应释放, 解锁次数 = %d", l.unlocked)
	}
}
