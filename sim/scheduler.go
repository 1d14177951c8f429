package sim

// wakeList keeps armed timer devices sorted by deadline. Devices with equal
// deadlines fire in the order they were armed.
type wakeList struct {
	head *TimerDevice
}

// insert adds dev in sorted order by deadline
func (l *wakeList) insert(dev *TimerDevice) {
	if l.head == nil || dev.deadline < l.head.deadline {
		dev.next = l.head
		l.head = dev
		return
	}

	current := l.head
	for current.next != nil && current.next.deadline <= dev.deadline {
		current = current.next
	}

	dev.next = current.next
	current.next = dev
}

// remove unlinks dev if it is queued
func (l *wakeList) remove(dev *TimerDevice) {
	if l.head == dev {
		l.head = dev.next
		dev.next = nil
		return
	}
	for current := l.head; current != nil; current = current.next {
		if current.next == dev {
			current.next = dev.next
			dev.next = nil
			return
		}
	}
}

// due pops the earliest device whose deadline is at or before t
func (l *wakeList) due(t uint64) *TimerDevice {
	dev := l.head
	if dev == nil || dev.deadline > t {
		return nil
	}
	l.head = dev.next
	dev.next = nil // Clear next pointer to avoid stale links
	return dev
}
