package compiler

// semaphore bounds how many files are lexed and parsed at the same time.
type semaphore struct {
	slots chan struct{}
}

func newSemaphore(n int) *semaphore {
	return &semaphore{
		slots: make(chan struct{}, n),
	}
}

func (self *semaphore) Acquire() {
	self.slots <- struct{}{}
}

func (self *semaphore) Release() {
	<-self.slots
}
